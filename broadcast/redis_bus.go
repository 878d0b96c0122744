package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Muadeel56/localconnect-plus/logger"
	"github.com/go-redis/redis/v8"
)

const defaultChannelPrefix = "chat:fabric:"

// RedisBus 多节点部署时的广播层：本地 Hub 先投递，再经 Redis PUBLISH 转给其他节点。
// 每个节点订阅 prefix*，收到自己发出的事件直接跳过。
type RedisBus struct {
	hub    *Hub
	rdb    *redis.Client
	log    *logger.Logger
	nodeID string
	prefix string
}

type envelope struct {
	Node    string          `json:"node"`
	Group   string          `json:"group"`
	Payload json.RawMessage `json:"payload"`
}

func NewRedisBus(hub *Hub, rdb *redis.Client, nodeID string, log *logger.Logger) *RedisBus {
	if log == nil {
		log = logger.Nop()
	}
	return &RedisBus{
		hub:    hub,
		rdb:    rdb,
		log:    log.With("component", "RedisBus", "node", nodeID),
		nodeID: nodeID,
		prefix: defaultChannelPrefix,
	}
}

func (b *RedisBus) Subscribe(c Conn, g Group)   { b.hub.Subscribe(c, g) }
func (b *RedisBus) Unsubscribe(c Conn, g Group) { b.hub.Unsubscribe(c, g) }
func (b *RedisBus) UnsubscribeAll(c Conn)       { b.hub.UnsubscribeAll(c) }

// Publish 本地投递总是先完成；Redis 失败只影响其他节点
func (b *RedisBus) Publish(ctx context.Context, g Group, payload []byte) error {
	if err := b.hub.Publish(ctx, g, payload); err != nil {
		return err
	}
	raw, err := json.Marshal(envelope{Node: b.nodeID, Group: g.String(), Payload: payload})
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, b.prefix+g.String(), raw).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", g, err)
	}
	return nil
}

// Start 订阅成功后返回，转发协程在 ctx 结束时退出
func (b *RedisBus) Start(ctx context.Context) error {
	if b.rdb == nil {
		return fmt.Errorf("redis client is nil")
	}
	sub := b.rdb.PSubscribe(ctx, b.prefix+"*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis psubscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				b.forward(m)
			}
		}
	}()
	return nil
}

func (b *RedisBus) forward(m *redis.Message) {
	if m == nil {
		return
	}
	var env envelope
	if err := json.Unmarshal([]byte(m.Payload), &env); err != nil {
		b.log.Warn("bad fabric payload", "channel", m.Channel, "error", err)
		return
	}
	if env.Node == b.nodeID {
		return
	}
	name := env.Group
	if name == "" {
		name = strings.TrimPrefix(m.Channel, b.prefix)
	}
	g, err := ParseGroup(name)
	if err != nil {
		b.log.Warn("bad fabric group", "group", name, "error", err)
		return
	}
	b.hub.Deliver(g, env.Payload)
}
