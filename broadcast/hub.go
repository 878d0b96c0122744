package broadcast

import (
	"context"
	"sync"

	"github.com/Muadeel56/localconnect-plus/logger"
	"github.com/Muadeel56/localconnect-plus/metrics"
)

// Conn 可以接收广播的连接。Deliver 不能阻塞，缓冲满时返回 false。
type Conn interface {
	Deliver(payload []byte) bool
}

// Publisher 向广播组发布事件
type Publisher interface {
	Publish(ctx context.Context, g Group, payload []byte) error
}

// Fabric 订阅 + 发布
type Fabric interface {
	Publisher
	Subscribe(c Conn, g Group)
	Unsubscribe(c Conn, g Group)
	UnsubscribeAll(c Conn)
}

// Hub 单进程内存广播表
type Hub struct {
	log *logger.Logger

	mu     sync.RWMutex
	groups map[Group]map[Conn]struct{}
	// 反向索引，断开时一次性退出所有组
	conns map[Conn]map[Group]struct{}
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		log:    log.With("component", "Hub"),
		groups: make(map[Group]map[Conn]struct{}),
		conns:  make(map[Conn]map[Group]struct{}),
	}
}

func (h *Hub) Subscribe(c Conn, g Group) {
	if c == nil || g.IsZero() {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.groups[g] == nil {
		h.groups[g] = make(map[Conn]struct{})
	}
	h.groups[g][c] = struct{}{}
	if h.conns[c] == nil {
		h.conns[c] = make(map[Group]struct{})
	}
	h.conns[c][g] = struct{}{}
}

func (h *Hub) Unsubscribe(c Conn, g Group) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, g)
}

func (h *Hub) UnsubscribeAll(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for g := range h.conns[c] {
		h.removeLocked(c, g)
	}
}

func (h *Hub) removeLocked(c Conn, g Group) {
	if subs, ok := h.groups[g]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.groups, g)
		}
	}
	if gs, ok := h.conns[c]; ok {
		delete(gs, g)
		if len(gs) == 0 {
			delete(h.conns, c)
		}
	}
}

// Publish 只投递给本进程内的订阅者
func (h *Hub) Publish(ctx context.Context, g Group, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	metrics.FabricPublished.WithLabelValues(g.Kind()).Inc()
	h.Deliver(g, payload)
	return nil
}

// Deliver 投递到本地订阅者，返回成功投递的连接数
func (h *Hub) Deliver(g Group, payload []byte) int {
	h.mu.RLock()
	targets := make([]Conn, 0, len(h.groups[g]))
	for c := range h.groups[g] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.Deliver(payload) {
			delivered++
			continue
		}
		metrics.FabricDropped.Inc()
		h.log.Warn("subscriber buffer full, dropping event", "group", g.String())
	}
	return delivered
}

// Subscribers 组内本地订阅数
func (h *Hub) Subscribers(g Group) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[g])
}

// IsSubscribed 连接是否在组内
func (h *Hub) IsSubscribed(c Conn, g Group) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.groups[g][c]
	return ok
}
