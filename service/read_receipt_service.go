package service

import (
	"context"
	"errors"

	"github.com/Muadeel56/localconnect-plus/broadcast"
	"github.com/Muadeel56/localconnect-plus/message"
	"github.com/google/uuid"
)

// ReadReceiptService 已读回执：写已读游标并广播 messages_read。
// WS 的 read_messages 帧和 REST mark_as_read 都走这里。
type ReadReceiptService struct {
	*Service
	members *MemberService
}

func NewReadReceiptService(s *Service, members *MemberService) *ReadReceiptService {
	return &ReadReceiptService{Service: s, members: members}
}

// MarkRoomRead last_read_at = now（后写覆盖先写）
func (s *ReadReceiptService) MarkRoomRead(ctx context.Context, who Identity, roomID uuid.UUID) error {
	if _, err := s.members.GetActiveMembership(roomID, who.UserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return newErr(ErrValidation, "Not a participant")
		}
		return err
	}
	now := s.now()
	if err := s.members.MarkRead(roomID, who.UserID, now); err != nil {
		return err
	}
	s.publishJSON(ctx, broadcast.RoomGroup(roomID), message.MessagesReadEvent{
		Type:      message.TypeMessagesRead,
		User:      who.Username,
		Timestamp: message.FormatTime(now),
	})
	return nil
}
