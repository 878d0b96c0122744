package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Muadeel56/localconnect-plus/broadcast"
	"github.com/Muadeel56/localconnect-plus/cons"
	"github.com/Muadeel56/localconnect-plus/message"
	"github.com/Muadeel56/localconnect-plus/metrics"
	"github.com/Muadeel56/localconnect-plus/models"
	"github.com/Muadeel56/localconnect-plus/repository"
	"gorm.io/datatypes"
)

const (
	previewMaxRunes          = 100
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

// NotificationService 聊天通知：落库 + 推送到个人频道
type NotificationService struct {
	*Service
	participants  *repository.ParticipantDAO
	notifications *repository.NotificationDAO
}

func NewNotificationService(s *Service) *NotificationService {
	return &NotificationService{
		Service:       s,
		participants:  repository.NewParticipantDAO(s.DB),
		notifications: repository.NewNotificationDAO(s.DB),
	}
}

// notificationPayload 推送快照，客户端无需回查房间和发送者
type notificationPayload struct {
	RoomName       string `json:"room_name"`
	SenderID       string `json:"sender_id"`
	SenderUsername string `json:"sender_username"`
	Preview        string `json:"preview"`
}

// FanOutMessage 给除发送者外的每个活跃成员写一行通知（单条批量 INSERT），再逐个推送
func (s *NotificationService) FanOutMessage(ctx context.Context, msg *models.Message, room *models.Room) error {
	members, err := s.participants.ListActive(msg.RoomID)
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}

	senderName := msg.Sender.Username
	payload, err := json.Marshal(notificationPayload{
		RoomName:       room.Name,
		SenderID:       strconv.FormatUint(msg.SenderID, 10),
		SenderUsername: senderName,
		Preview:        preview(msg.DisplayContent()),
	})
	if err != nil {
		return err
	}

	now := s.now()
	rows := make([]models.ChatNotification, 0, len(members))
	for _, p := range members {
		if p.UserID == msg.SenderID {
			continue
		}
		row := models.ChatNotification{
			RecipientID: p.UserID,
			RoomID:      msg.RoomID,
			Target:      models.MessageTarget(msg.ID),
			Type:        cons.NotificationTypeMessage,
			Content:     "New message from " + senderName,
			Payload:     datatypes.JSON(payload),
			CreatedAt:   now,
		}
		if mentions(msg.State.Content, p.User.Username) {
			row.Type = cons.NotificationTypeMention
			row.Content = senderName + " mentioned you"
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}

	if err := s.notifications.CreateBatch(rows); err != nil {
		return fmt.Errorf("insert notifications: %w", err)
	}
	metrics.NotificationsCreated.Add(float64(len(rows)))

	for i := range rows {
		s.publishJSON(ctx, broadcast.UserGroup(rows[i].RecipientID), message.ChatNotificationEvent{
			Type:         message.TypeChatNotification,
			Notification: message.NewNotificationDTO(&rows[i]),
		})
	}
	return nil
}

// mentions 内容中出现 @username 且其后不是用户名字符
func mentions(content, username string) bool {
	if username == "" {
		return false
	}
	tag := "@" + username
	for start := 0; ; {
		i := strings.Index(content[start:], tag)
		if i < 0 {
			return false
		}
		end := start + i + len(tag)
		if end == len(content) || !isNameByte(content[end]) {
			return true
		}
		start = end
	}
}

func isNameByte(b byte) bool {
	return b == '_' || b == '.' || b == '-' || b == '+' || b == '@' ||
		(b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewMaxRunes {
		return s
	}
	return string([]rune(s)[:previewMaxRunes]) + "..."
}

// List 按 id 倒序分页，cursor 为上一页最后一条的 id
func (s *NotificationService) List(userID uint64, cursor uint64, limit int, unreadOnly bool) ([]models.ChatNotification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	return s.notifications.ListByRecipient(userID, cursor, limit, unreadOnly)
}

// MarkRead 只能标记自己的通知
func (s *NotificationService) MarkRead(userID uint64, id uint64) error {
	n, err := s.notifications.FindForRecipient(userID, id)
	if err != nil {
		return notFoundOr(err, "Notification not found")
	}
	if n.IsRead {
		return nil
	}
	_, err = s.notifications.MarkRead(userID, []uint64{id})
	return err
}

func (s *NotificationService) MarkAllRead(userID uint64) (int64, error) {
	return s.notifications.MarkAllRead(userID)
}

func (s *NotificationService) UnreadCount(userID uint64) (int64, error) {
	return s.notifications.CountUnread(userID)
}
