package service

import (
	"context"
	"errors"

	"github.com/Muadeel56/localconnect-plus/message"
	"github.com/google/uuid"
)

// SessionBootstrapService WS 握手后的会话准入：
// 校验活跃成员身份、登记在线状态、生成 connection_established 帧。
type SessionBootstrapService struct {
	*Service
	members  *MemberService
	presence *PresenceService
}

func NewSessionBootstrapService(s *Service, members *MemberService, presence *PresenceService) *SessionBootstrapService {
	return &SessionBootstrapService{Service: s, members: members, presence: presence}
}

// OpenRoom 非活跃成员返回 ErrForbidden；数据库错误原样返回
func (s *SessionBootstrapService) OpenRoom(ctx context.Context, who Identity, roomID uuid.UUID) (message.ConnectionEstablished, error) {
	if who.IsAnonymous() {
		return message.ConnectionEstablished{}, newErr(ErrUnauthenticated, "authentication required")
	}
	if _, err := s.members.GetActiveMembership(roomID, who.UserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return message.ConnectionEstablished{}, newErr(ErrForbidden, "Not a participant")
		}
		return message.ConnectionEstablished{}, err
	}
	if s.presence != nil {
		if err := s.presence.Connect(ctx, roomID, who.UserID); err != nil {
			s.logger().Warn("presence connect failed", "room_id", roomID, "user_id", who.UserID, "error", err)
		}
	}
	return message.ConnectionEstablished{
		Type:   message.TypeConnectionEstablished,
		RoomID: roomID.String(),
		User:   who.Username,
	}, nil
}

// CloseRoom 连接关闭时撤销在线登记
func (s *SessionBootstrapService) CloseRoom(ctx context.Context, who Identity, roomID uuid.UUID) {
	if s.presence == nil {
		return
	}
	if err := s.presence.Disconnect(ctx, roomID, who.UserID); err != nil {
		s.logger().Warn("presence disconnect failed", "room_id", roomID, "user_id", who.UserID, "error", err)
	}
}
