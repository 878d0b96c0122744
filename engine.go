package chat

import (
	"context"
	"errors"

	"github.com/Muadeel56/localconnect-plus/broadcast"
	"github.com/Muadeel56/localconnect-plus/logger"
	"github.com/Muadeel56/localconnect-plus/middleware"
	"github.com/Muadeel56/localconnect-plus/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultSendBuffer = 256

type ChatEngine struct {
	config *Config
	log    *logger.Logger

	hub    *broadcast.Hub
	bus    *broadcast.RedisBus // 仅配置 Redis 时存在
	Fabric broadcast.Fabric

	AuthService      *service.AuthService
	RoomService      *service.RoomService
	MemberService    *service.MemberService
	MsgService       *service.MessageService
	NotifyService    *service.NotificationService
	PresenceService  *service.PresenceService
	ReadReceipt      *service.ReadReceiptService
	SessionBootstrap *service.SessionBootstrapService

	WsServer *WsServer
}

// NewEngine 创建实例
// 使用选项模式传入配置，Option回调
func NewEngine(opts ...Option) (*ChatEngine, error) {
	c := &Config{SendBuffer: defaultSendBuffer}
	for _, opt := range opts {
		opt(c)
	}
	if c.DB == nil {
		return nil, errors.New("chat: database is required")
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	if c.NodeID == "" {
		c.NodeID = uuid.NewString()
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = defaultSendBuffer
	}

	e := &ChatEngine{config: c, log: c.Logger.With("node_id", c.NodeID)}

	// 单节点用 Hub；有 Redis 时包一层 RedisBus 做跨节点转发
	e.hub = broadcast.NewHub(e.log)
	e.Fabric = e.hub
	if c.RDB != nil {
		e.bus = broadcast.NewRedisBus(e.hub, c.RDB, c.NodeID, e.log)
		e.Fabric = e.bus
	}

	base := &service.Service{
		DB:     c.DB,
		RDB:    c.RDB,
		Log:    e.log,
		Fabric: e.Fabric,
	}

	e.MemberService = service.NewMemberService(base)
	e.NotifyService = service.NewNotificationService(base)
	e.RoomService = service.NewRoomService(base, e.MemberService)
	e.MsgService = service.NewMessageService(base, e.MemberService, e.NotifyService)
	e.PresenceService = service.NewPresenceService(base, e.MemberService)
	e.ReadReceipt = service.NewReadReceiptService(base, e.MemberService)
	e.SessionBootstrap = service.NewSessionBootstrapService(base, e.MemberService, e.PresenceService)
	e.AuthService = service.NewAuthService(base, c.JWTSecret)

	e.WsServer = NewWsServer(e)

	if c.Service.Debug {
		e.log.Debug("chat engine initialised", "redis", c.RDB != nil, "origins", c.AllowedOrigins)
	}
	return e, nil
}

// Start 启动跨节点订阅；单节点模式直接返回
func (c *ChatEngine) Start(ctx context.Context) error {
	if c.bus == nil {
		return nil
	}
	return c.bus.Start(ctx)
}

// GinAuthMiddleware 返回配置好的 Gin 鉴权中间件
//
// 使用示例:
//
//	engine, _ := chat.NewEngine(chat.WithDB(db), chat.WithJWTSecret(secret))
//	api := r.Group("/api/v1/chat", engine.GinAuthMiddleware(nil))
func (c *ChatEngine) GinAuthMiddleware(opt *middleware.AuthOptions) gin.HandlerFunc {
	return middleware.GinAuthMiddleware(c.AuthService, opt)
}
