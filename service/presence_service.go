package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"

	"github.com/Muadeel56/localconnect-plus/models"
	"github.com/Muadeel56/localconnect-plus/repository"
	"github.com/google/uuid"
)

const presenceKeyPrefix = "chat:presence:"

// PresenceService 房间在线用户（按连接计数，同一用户多端只算一次）。
// 配置 Redis 时多节点共享 chat:presence:{room_id} 哈希，否则只统计本节点。
type PresenceService struct {
	*Service
	members *MemberService
	users   *repository.UserDAO

	mu    sync.Mutex
	local map[uuid.UUID]map[uint64]int
}

func NewPresenceService(s *Service, members *MemberService) *PresenceService {
	p := &PresenceService{Service: s, members: members, local: make(map[uuid.UUID]map[uint64]int)}
	if s.DB != nil {
		p.users = repository.NewUserDAO(s.DB)
	}
	return p
}

func presenceKey(roomID uuid.UUID) string {
	return presenceKeyPrefix + roomID.String()
}

// Connect 连接建立后调用
func (p *PresenceService) Connect(ctx context.Context, roomID uuid.UUID, userID uint64) error {
	if p.RDB == nil {
		p.mu.Lock()
		defer p.mu.Unlock()
		m := p.local[roomID]
		if m == nil {
			m = make(map[uint64]int)
			p.local[roomID] = m
		}
		m[userID]++
		return nil
	}
	return p.RDB.HIncrBy(ctx, presenceKey(roomID), strconv.FormatUint(userID, 10), 1).Err()
}

// Disconnect 连接关闭时调用；计数归零即离线
func (p *PresenceService) Disconnect(ctx context.Context, roomID uuid.UUID, userID uint64) error {
	if p.RDB == nil {
		p.mu.Lock()
		defer p.mu.Unlock()
		m := p.local[roomID]
		if m == nil {
			return nil
		}
		if m[userID]--; m[userID] <= 0 {
			delete(m, userID)
		}
		if len(m) == 0 {
			delete(p.local, roomID)
		}
		return nil
	}

	key := presenceKey(roomID)
	field := strconv.FormatUint(userID, 10)
	n, err := p.RDB.HIncrBy(ctx, key, field, -1).Result()
	if err != nil {
		return err
	}
	if n <= 0 {
		return p.RDB.HDel(ctx, key, field).Err()
	}
	return nil
}

// Online 在线用户 ID，升序
func (p *PresenceService) Online(ctx context.Context, roomID uuid.UUID) ([]uint64, error) {
	var ids []uint64
	if p.RDB == nil {
		p.mu.Lock()
		for uid := range p.local[roomID] {
			ids = append(ids, uid)
		}
		p.mu.Unlock()
	} else {
		vals, err := p.RDB.HGetAll(ctx, presenceKey(roomID)).Result()
		if err != nil {
			return nil, err
		}
		for field, cnt := range vals {
			n, err := strconv.ParseInt(cnt, 10, 64)
			if err != nil || n <= 0 {
				continue
			}
			uid, err := strconv.ParseUint(field, 10, 64)
			if err != nil {
				continue
			}
			ids = append(ids, uid)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// OnlineUsers REST 查询：调用者必须是房间成员
func (p *PresenceService) OnlineUsers(ctx context.Context, viewer Identity, roomID uuid.UUID) ([]models.User, error) {
	if _, err := p.members.GetActiveMembership(roomID, viewer.UserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, newErr(ErrForbidden, "Not a participant")
		}
		return nil, err
	}
	ids, err := p.Online(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if p.users == nil || len(ids) == 0 {
		return []models.User{}, nil
	}
	return p.users.FindByIDs(ids)
}
