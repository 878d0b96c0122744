package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Muadeel56/localconnect-plus/broadcast"
	"github.com/Muadeel56/localconnect-plus/cons"
	"github.com/Muadeel56/localconnect-plus/message"
	"github.com/Muadeel56/localconnect-plus/metrics"
	"github.com/Muadeel56/localconnect-plus/models"
	"github.com/Muadeel56/localconnect-plus/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageService 消息存储与发送编排
type MessageService struct {
	*Service
	members  *MemberService
	notify   *NotificationService
	rooms    *repository.RoomDAO
	messages *repository.MessageDAO
	partDAO  *repository.ParticipantDAO
}

func NewMessageService(s *Service, members *MemberService, notify *NotificationService) *MessageService {
	return &MessageService{
		Service:  s,
		members:  members,
		notify:   notify,
		rooms:    repository.NewRoomDAO(s.DB),
		messages: repository.NewMessageDAO(s.DB),
		partDAO:  repository.NewParticipantDAO(s.DB),
	}
}

// AppendParams 追加消息参数
type AppendParams struct {
	RoomID     uuid.UUID
	Sender     Identity
	Type       string // 为空按 text
	Content    string
	Attachment models.Attachment
	ReplyToID  *uuid.UUID
}

func (p *AppendParams) normalize() error {
	if p.Type == "" {
		p.Type = cons.MessageTypeText
	}
	if !cons.ValidMessageType(p.Type) {
		return newErr(ErrValidation, "Invalid message type")
	}
	p.Content = strings.TrimSpace(p.Content)
	switch p.Type {
	case cons.MessageTypeText, cons.MessageTypeSystem:
		if p.Content == "" {
			return newErr(ErrValidation, "Content is required")
		}
	default:
		if p.Content == "" && p.Attachment.FileURL == "" {
			return newErr(ErrValidation, "Attachment or content is required")
		}
	}
	if p.Attachment.FileSize != nil && *p.Attachment.FileSize < 0 {
		return newErr(ErrValidation, "Invalid file size")
	}
	return nil
}

// Append 写入一条消息并刷新房间 updated_at（同一事务）。
// 调用方负责成员校验；reply_to 必须指向同一房间，回复的回复会挂到根消息上。
func (s *MessageService) Append(p AppendParams) (*models.Message, error) {
	msg, _, err := s.appendTx(p)
	return msg, err
}

func (s *MessageService) appendTx(p AppendParams) (*models.Message, *models.Room, error) {
	if err := p.normalize(); err != nil {
		return nil, nil, err
	}

	tx := s.DB.Begin()
	if tx.Error != nil {
		return nil, nil, tx.Error
	}
	defer tx.Rollback()

	room, err := s.rooms.WithDB(tx).FindActiveByID(p.RoomID)
	if err != nil {
		return nil, nil, notFoundOr(err, "Room not found")
	}

	msgDAO := s.messages.WithDB(tx)
	var parent *models.Message
	if p.ReplyToID != nil {
		parent, err = msgDAO.FindByID(*p.ReplyToID)
		if err != nil {
			return nil, nil, notFoundOr(err, "Reply target not found")
		}
		if parent.RoomID != p.RoomID {
			return nil, nil, newErr(ErrValidation, "Reply target belongs to another room")
		}
		if parent.ReplyToID != nil {
			parent, err = msgDAO.FindByID(*parent.ReplyToID)
			if err != nil {
				return nil, nil, notFoundOr(err, "Reply target not found")
			}
		}
	}

	now := s.now()
	msg := &models.Message{
		RoomID:     p.RoomID,
		SenderID:   p.Sender.UserID,
		Type:       p.Type,
		Attachment: p.Attachment,
		CreatedAt:  now,
		UpdatedAt:  now,
		State:      models.MessageState{Content: p.Content},
	}
	if parent != nil {
		msg.ReplyToID = &parent.ID
	}
	if err := msgDAO.Create(msg); err != nil {
		return nil, nil, err
	}
	if err := s.rooms.WithDB(tx).Touch(p.RoomID, now); err != nil {
		return nil, nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, nil, err
	}
	room.UpdatedAt = now

	// 关联只在提交后挂上，避免 Create 时级联写入
	msg.Sender = models.User{ID: p.Sender.UserID, Username: p.Sender.Username, Avatar: p.Sender.Avatar, Role: p.Sender.Role}
	msg.ReplyTo = parent

	metrics.MessagesAppended.WithLabelValues(msg.Type).Inc()
	return msg, room, nil
}

// Send 发送：成员校验 -> 写入 -> 广播到房间 -> 给其他成员落通知并推送
func (s *MessageService) Send(ctx context.Context, p AppendParams) (*models.Message, error) {
	if p.Type == cons.MessageTypeSystem {
		return nil, newErr(ErrValidation, "System messages cannot be sent by users")
	}
	if _, err := s.members.GetActiveMembership(p.RoomID, p.Sender.UserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, newErr(ErrForbidden, "Not a participant")
		}
		return nil, err
	}

	msg, room, err := s.appendTx(p)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	s.publishJSON(ctx, broadcast.RoomGroup(msg.RoomID), message.NewChatMessageEvent(msg))

	if s.notify != nil {
		// 消息已落库，通知失败不回滚
		if err := s.notify.FanOutMessage(ctx, msg, room); err != nil {
			s.logger().Error("notification fan-out failed", "message_id", msg.ID, "room_id", msg.RoomID, "error", err)
		}
	}
	return msg, nil
}

// Reply 回复某条消息（文本）
func (s *MessageService) Reply(ctx context.Context, sender Identity, parentID uuid.UUID, content string) (*models.Message, error) {
	parent, err := s.messages.FindByID(parentID)
	if err != nil {
		return nil, notFoundOr(err, "Message not found")
	}
	return s.Send(ctx, AppendParams{
		RoomID:    parent.RoomID,
		Sender:    sender,
		Type:      cons.MessageTypeText,
		Content:   content,
		ReplyToID: &parent.ID,
	})
}

// Get 读取单条消息，调用者需为房间成员
func (s *MessageService) Get(viewer Identity, id uuid.UUID) (*models.Message, error) {
	msg, err := s.messages.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Message not found")
	}
	if _, err := s.members.GetActiveMembership(msg.RoomID, viewer.UserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, newErr(ErrNotFound, "Message not found")
		}
		return nil, err
	}
	return msg, nil
}

// Edit 只有发送者可以编辑，已删除的消息不可编辑
func (s *MessageService) Edit(actor Identity, id uuid.UUID, content string) (*models.Message, error) {
	msg, err := s.messages.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Message not found")
	}
	if msg.SenderID != actor.UserID {
		return nil, newErr(ErrForbidden, "Not authorized")
	}
	if msg.State.IsDeleted {
		return nil, newErr(ErrValidation, "Cannot edit a deleted message")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, newErr(ErrValidation, "Content is required")
	}

	now := s.now()
	n, err := s.messages.Edit(msg.ID, content, now)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// 读取之后被删除
		return nil, newErr(ErrValidation, "Cannot edit a deleted message")
	}
	msg.State.Content = content
	msg.State.IsEdited = true
	msg.State.EditedAt = &now
	msg.UpdatedAt = now
	return msg, nil
}

// SoftDelete 发送者本人或有管理权限的人可删除；重复删除直接返回
func (s *MessageService) SoftDelete(actor Identity, id uuid.UUID) error {
	msg, err := s.messages.FindByID(id)
	if err != nil {
		return notFoundOr(err, "Message not found")
	}
	if msg.SenderID != actor.UserID {
		row, err := s.partDAO.FindActive(msg.RoomID, actor.UserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if !CanModerate(actor, row, msg.RoomID, ActionDeleteMessage) {
			return newErr(ErrForbidden, "Not authorized")
		}
	}
	if msg.State.IsDeleted {
		return nil
	}

	return s.messages.SoftDelete(msg.ID, s.now())
}

// ListByRoom 房间消息，created_at/id 升序；只有活跃成员可读
func (s *MessageService) ListByRoom(viewer Identity, roomID uuid.UUID, opt repository.ListOptions) ([]models.Message, error) {
	if _, err := s.members.GetActiveMembership(roomID, viewer.UserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, newErr(ErrForbidden, "Not a participant")
		}
		return nil, err
	}
	return s.messages.FindByRoomID(roomID, opt)
}
