package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Muadeel56/localconnect-plus/broadcast"
	"github.com/Muadeel56/localconnect-plus/logger"
	"github.com/Muadeel56/localconnect-plus/message"
	"github.com/Muadeel56/localconnect-plus/metrics"
	"github.com/Muadeel56/localconnect-plus/service"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time 写入超时时间
	writeWait = 10 * time.Second

	// Time pong超时时间
	pongWait = 60 * time.Second

	// Send 对应的ping 必须小于pong
	pingPeriod = (pongWait * 9) / 10

	// Maximum 对等端允许消息大小
	maxMessageSize = 16 * 1024
)

const (
	endpointRoom          = "room"
	endpointNotifications = "notifications"
)

// Client 一个具体的 websocket 连接。
// send 从不关闭，关闭信号走 done，避免广播与断开并发时向已关闭 channel 写入。
type Client struct {
	server *WsServer

	// 🔗链接
	conn *websocket.Conn

	// 消息缓冲区
	send chan []byte
	done chan struct{}
	once sync.Once

	// ctx 随连接关闭取消，帧处理中的存储调用使用它
	ctx    context.Context
	cancel context.CancelFunc

	Identity service.Identity
	RoomID   uuid.UUID // 通知连接为 uuid.Nil
	endpoint string
}

// Deliver 实现 broadcast.Conn：非阻塞，缓冲满或已关闭返回 false
func (c *Client) Deliver(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) sendJSON(v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		c.server.log.Error("marshal frame failed", "error", err)
		return false
	}
	return c.Deliver(b)
}

// readPump 逐帧读取并同步处理：同一连接的帧严格按到达顺序完成
func (c *Client) readPump(handle func(*Client, []byte)) {
	defer c.shutdown()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.server.log.Debug("ws read closed", "user_id", c.Identity.UserID, "error", err)
			}
			return
		}
		if handle != nil {
			handle(c, data)
		}
	}
}

// writePump 每个事件单独一帧写出
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.shutdown()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.shutdown()
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}

// shutdown 退出所有广播组、撤销在线登记；可重复调用
func (c *Client) shutdown() {
	c.once.Do(func() {
		close(c.done)
		c.cancel()
		c.server.engine.Fabric.UnsubscribeAll(c)
		if c.RoomID != uuid.Nil {
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			c.server.engine.SessionBootstrap.CloseRoom(ctx, c.Identity, c.RoomID)
			cancel()
		}
		c.server.untrack(c)
		metrics.WSConnections.WithLabelValues(c.endpoint).Dec()
	})
}

// WsServer 连接网关：握手鉴权、准入、帧分发
type WsServer struct {
	engine   *ChatEngine
	log      *logger.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*Client]struct{}
}

func NewWsServer(e *ChatEngine) *WsServer {
	h := &WsServer{
		engine:  e,
		log:     e.log.With("component", "WsServer"),
		clients: make(map[*Client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *WsServer) checkOrigin(r *http.Request) bool {
	allowed := h.engine.config.AllowedOrigins
	if len(allowed) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range allowed {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// reject 握手已完成，直接发关闭帧，不发送任何错误数据帧
func (h *WsServer) reject(conn *websocket.Conn, code int, reason string) {
	metrics.WSRejected.WithLabelValues(strconv.Itoa(code)).Inc()
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
	_ = conn.Close()
}

func (h *WsServer) newClient(conn *websocket.Conn, who service.Identity, roomID uuid.UUID, endpoint string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		server:   h,
		conn:     conn,
		send:     make(chan []byte, h.engine.config.SendBuffer),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
		Identity: who,
		RoomID:   roomID,
		endpoint: endpoint,
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	metrics.WSConnections.WithLabelValues(endpoint).Inc()
	return c
}

func (h *WsServer) untrack(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// authenticate 任何校验失败都视为匿名
func (h *WsServer) authenticate(r *http.Request) (service.Identity, bool) {
	who, err := h.engine.AuthService.IdentityFromRequest(r.Context(), r)
	if err != nil {
		h.log.Debug("ws handshake unauthenticated", "path", r.URL.Path, "error", err)
		return service.Identity{}, false
	}
	return who, !who.IsAnonymous()
}

// ServeRoomWS 房间连接：未认证 4001，非活跃成员 4003，否则加入房间广播组
func (h *WsServer) ServeRoomWS(w http.ResponseWriter, r *http.Request, roomParam string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}

	who, ok := h.authenticate(r)
	if !ok {
		h.reject(conn, message.CloseUnauthenticated, "authentication required")
		return
	}

	roomID, err := uuid.Parse(strings.TrimSpace(roomParam))
	if err != nil {
		h.reject(conn, message.CloseNotParticipant, "not a participant")
		return
	}

	hello, err := h.engine.SessionBootstrap.OpenRoom(r.Context(), who, roomID)
	switch {
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrNotFound):
		h.reject(conn, message.CloseNotParticipant, "not a participant")
		return
	case err != nil:
		h.log.Error("ws membership check failed", "room_id", roomID, "user_id", who.UserID, "error", err)
		h.reject(conn, websocket.CloseInternalServerErr, "internal error")
		return
	}

	c := h.newClient(conn, who, roomID, endpointRoom)
	// 先入队欢迎帧再订阅，保证它是连接上的第一帧
	c.sendJSON(hello)
	h.engine.Fabric.Subscribe(c, broadcast.RoomGroup(roomID))
	h.log.Info("ws room connected", "room_id", roomID, "user_id", who.UserID)

	go c.writePump()
	go c.readPump(h.handleRoomFrame)
}

// ServeNotificationWS 个人通知连接：任何已认证用户都可接入
func (h *WsServer) ServeNotificationWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}

	who, ok := h.authenticate(r)
	if !ok {
		h.reject(conn, message.CloseUnauthenticated, "authentication required")
		return
	}

	c := h.newClient(conn, who, uuid.Nil, endpointNotifications)
	c.sendJSON(message.NotificationConnectionEstablished{
		Type:   message.TypeNotificationConnectionEstablished,
		UserID: strconv.FormatUint(who.UserID, 10),
	})
	h.engine.Fabric.Subscribe(c, broadcast.UserGroup(who.UserID))

	go c.writePump()
	// 通知连接是只读的，上行帧只用来维持心跳
	go c.readPump(nil)
}

// Close 关闭所有连接，用于进程优雅退出
func (h *WsServer) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.shutdown()
	}
}

// Connections 当前连接数
func (h *WsServer) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
