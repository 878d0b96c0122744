package message

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/Muadeel56/localconnect-plus/models"
)

// SenderDTO 发送者摘要
type SenderDTO struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profile_picture"`
}

// ReplyDTO 被回复消息摘要（只有一层）
type ReplyDTO struct {
	ID             string    `json:"id"`
	DisplayContent string    `json:"display_content"`
	Sender         SenderDTO `json:"sender"`
}

// MessageDTO 消息输出结构，WS 广播与 HTTP 接口共用。
// 已删除消息的 content 也返回占位文本。
type MessageDTO struct {
	ID             string    `json:"id"`
	RoomID         string    `json:"room_id"`
	Content        string    `json:"content"`
	DisplayContent string    `json:"display_content"`
	MessageType    string    `json:"message_type"`
	FileURL        string    `json:"file_url"`
	FileName       string    `json:"file_name"`
	FileSize       *int64    `json:"file_size"`
	ReplyTo        *ReplyDTO `json:"reply_to"`
	Sender         SenderDTO `json:"sender"`
	CreatedAt      string    `json:"created_at"`
	IsEdited       bool      `json:"is_edited"`
	EditedAt       *string   `json:"edited_at"`
	IsDeleted      bool      `json:"is_deleted"`
}

// NotificationDTO 聊天通知输出结构
type NotificationDTO struct {
	ID               uint64          `json:"id"`
	RoomID           string          `json:"room_id"`
	MessageID        *string         `json:"message_id"`
	NotificationType string          `json:"notification_type"`
	Content          string          `json:"content"`
	Payload          json.RawMessage `json:"payload,omitempty"`
	IsRead           bool            `json:"is_read"`
	CreatedAt        string          `json:"created_at"`
}

// FormatTime ISO-8601，统一 UTC
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatTime(*t)
	return &s
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func NewSenderDTO(u models.User) SenderDTO {
	dto := SenderDTO{ID: formatUint(u.ID), Username: u.Username}
	if u.Avatar != "" {
		avatar := u.Avatar
		dto.ProfilePicture = &avatar
	}
	return dto
}

// NewMessageDTO Sender / ReplyTo 需要提前加载
func NewMessageDTO(m *models.Message) MessageDTO {
	display := m.DisplayContent()
	content := m.State.Content
	if m.State.IsDeleted {
		content = display
	}
	sender := m.Sender
	if sender.ID == 0 {
		sender.ID = m.SenderID
	}
	dto := MessageDTO{
		ID:             m.ID.String(),
		RoomID:         m.RoomID.String(),
		Content:        content,
		DisplayContent: display,
		MessageType:    m.Type,
		FileURL:        m.Attachment.FileURL,
		FileName:       m.Attachment.FileName,
		FileSize:       m.Attachment.FileSize,
		Sender:         NewSenderDTO(sender),
		CreatedAt:      FormatTime(m.CreatedAt),
		IsEdited:       m.State.IsEdited,
		EditedAt:       formatTimePtr(m.State.EditedAt),
		IsDeleted:      m.State.IsDeleted,
	}
	if m.ReplyToID != nil {
		reply := &ReplyDTO{ID: m.ReplyToID.String()}
		if m.ReplyTo != nil {
			reply.DisplayContent = m.ReplyTo.DisplayContent()
			replySender := m.ReplyTo.Sender
			if replySender.ID == 0 {
				replySender.ID = m.ReplyTo.SenderID
			}
			reply.Sender = NewSenderDTO(replySender)
		}
		dto.ReplyTo = reply
	}
	return dto
}

func NewChatMessageEvent(m *models.Message) ChatMessageEvent {
	return ChatMessageEvent{Type: TypeChatMessage, Message: NewMessageDTO(m)}
}

func NewNotificationDTO(n *models.ChatNotification) NotificationDTO {
	dto := NotificationDTO{
		ID:               n.ID,
		RoomID:           n.RoomID.String(),
		NotificationType: n.Type,
		Content:          n.Content,
		IsRead:           n.IsRead,
		CreatedAt:        FormatTime(n.CreatedAt),
	}
	if len(n.Payload) > 0 {
		dto.Payload = json.RawMessage(n.Payload)
	}
	if id, ok := n.Target.MessageID(); ok {
		s := id.String()
		dto.MessageID = &s
	}
	return dto
}
