package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/Muadeel56/localconnect-plus/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T, mr *miniredis.Miniredis, node string) *RedisBus {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisBus(NewHub(logger.Nop()), rdb, node, logger.Nop())
}

func TestRedisBus_CrossNodeDelivery(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nodeA := newTestBus(t, mr, "node-a")
	nodeB := newTestBus(t, mr, "node-b")
	require.NoError(t, nodeA.Start(ctx))
	require.NoError(t, nodeB.Start(ctx))

	room := RoomGroup(uuid.New())
	onA, onB := newFakeConn(4), newFakeConn(4)
	nodeA.Subscribe(onA, room)
	nodeB.Subscribe(onB, room)

	require.NoError(t, nodeA.Publish(ctx, room, []byte(`{"type":"chat_message"}`)))

	assert.JSONEq(t, `{"type":"chat_message"}`, string(recvPayload(t, onA, time.Second)))
	assert.JSONEq(t, `{"type":"chat_message"}`, string(recvPayload(t, onB, 2*time.Second)))
	// 本节点事件不会经 Redis 再投递一次
	assertNothing(t, onA, 100*time.Millisecond)
}

func TestRedisBus_IgnoresMalformedEnvelope(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := newTestBus(t, mr, "node-a")
	require.NoError(t, bus.Start(ctx))

	g := UserGroup(5)
	c := newFakeConn(2)
	bus.Subscribe(c, g)

	mr.Publish(defaultChannelPrefix+g.String(), "not json")
	assertNothing(t, c, 100*time.Millisecond)
}

func TestRedisBus_StartWithoutClient(t *testing.T) {
	bus := NewRedisBus(NewHub(nil), nil, "n", nil)
	assert.Error(t, bus.Start(context.Background()))
}
