package repository

import (
	"time"

	"github.com/Muadeel56/localconnect-plus/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageDAO 封装 Message 相关的数据库操作。
// 消息只追加；修改只能通过 Edit / SoftDelete 改各自的状态列。
type MessageDAO struct {
	db *gorm.DB
}

// NewMessageDAO 创建 MessageDAO 实例
func NewMessageDAO(db *gorm.DB) *MessageDAO {
	return &MessageDAO{db: db}
}

// WithDB 用于在事务（tx）中复用 DAO
func (dao *MessageDAO) WithDB(db *gorm.DB) *MessageDAO {
	if db == nil {
		return dao
	}
	return &MessageDAO{db: db}
}

// Create 创建消息
func (dao *MessageDAO) Create(msg *models.Message) error {
	return dao.db.Create(msg).Error
}

// FindByID 根据ID查找消息（带发送者）
func (dao *MessageDAO) FindByID(id uuid.UUID) (*models.Message, error) {
	var msg models.Message
	err := dao.db.Preload("Sender").Where("id = ?", id).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListOptions 房间消息列表参数
type ListOptions struct {
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// FindByRoomID 获取房间消息列表，按 created_at, id 升序
func (dao *MessageDAO) FindByRoomID(roomID uuid.UUID, opt ListOptions) ([]models.Message, error) {
	var messages []models.Message
	q := dao.db.Preload("Sender").Preload("ReplyTo").Where("room_id = ?", roomID)
	if !opt.IncludeDeleted {
		q = q.Where("is_deleted = ?", false)
	}
	q = q.Order("created_at ASC").Order("id ASC")
	if opt.Limit > 0 {
		q = q.Limit(opt.Limit)
	}
	if opt.Offset > 0 {
		q = q.Offset(opt.Offset)
	}
	err := q.Find(&messages).Error
	return messages, err
}

// Edit 只改内容相关列；已删除的行不匹配，返回受影响行数
func (dao *MessageDAO) Edit(id uuid.UUID, content string, now time.Time) (int64, error) {
	res := dao.db.Model(&models.Message{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]any{
			"content":    content,
			"is_edited":  true,
			"edited_at":  now,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}

// SoftDelete 只改删除标记列，不碰内容
func (dao *MessageDAO) SoftDelete(id uuid.UUID, now time.Time) error {
	return dao.db.Model(&models.Message{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_deleted": true,
			"deleted_at": now,
			"updated_at": now,
		}).Error
}

// CountUnread 未删除且晚于 since 的消息数；since 为空时统计全部
func (dao *MessageDAO) CountUnread(roomID uuid.UUID, since *time.Time) (int64, error) {
	var n int64
	q := dao.db.Model(&models.Message{}).
		Where("room_id = ? AND is_deleted = ?", roomID, false)
	if since != nil {
		q = q.Where("created_at > ?", *since)
	}
	err := q.Count(&n).Error
	return n, err
}

// LatestByRoom 房间最新一条未删除消息
func (dao *MessageDAO) LatestByRoom(roomID uuid.UUID) (*models.Message, error) {
	var msg models.Message
	err := dao.db.Preload("Sender").
		Where("room_id = ? AND is_deleted = ?", roomID, false).
		Order("created_at DESC").Order("id DESC").
		First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
