package repository

import (
	"github.com/Muadeel56/localconnect-plus/models"
	"gorm.io/gorm"
)

// NotificationDAO 封装聊天通知的数据库操作
type NotificationDAO struct {
	db *gorm.DB
}

func NewNotificationDAO(db *gorm.DB) *NotificationDAO {
	return &NotificationDAO{db: db}
}

// WithDB 用于在事务（tx）中复用 DAO
func (dao *NotificationDAO) WithDB(db *gorm.DB) *NotificationDAO {
	if db == nil {
		return dao
	}
	return &NotificationDAO{db: db}
}

// CreateBatch 单条 INSERT 批量写入
func (dao *NotificationDAO) CreateBatch(rows []models.ChatNotification) error {
	if len(rows) == 0 {
		return nil
	}
	return dao.db.Create(&rows).Error
}

// ListByRecipient 按 id 倒序，cursor>0 时取 id < cursor
func (dao *NotificationDAO) ListByRecipient(userID uint64, cursor uint64, limit int, unreadOnly bool) ([]models.ChatNotification, error) {
	var rows []models.ChatNotification
	q := dao.db.Where("recipient_id = ?", userID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	err := q.Order("id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// FindForRecipient 只查属于 userID 的通知
func (dao *NotificationDAO) FindForRecipient(userID, id uint64) (*models.ChatNotification, error) {
	var n models.ChatNotification
	if err := dao.db.Where("id = ? AND recipient_id = ?", id, userID).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkRead 只会更新属于 userID 的通知
func (dao *NotificationDAO) MarkRead(userID uint64, ids []uint64) (int64, error) {
	res := dao.db.Model(&models.ChatNotification{}).
		Where("recipient_id = ? AND id IN ?", userID, ids).
		Updates(map[string]any{"is_read": true})
	return res.RowsAffected, res.Error
}

// MarkAllRead 全部标记已读
func (dao *NotificationDAO) MarkAllRead(userID uint64) (int64, error) {
	res := dao.db.Model(&models.ChatNotification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true})
	return res.RowsAffected, res.Error
}

// CountUnread 未读通知数
func (dao *NotificationDAO) CountUnread(userID uint64) (int64, error) {
	var n int64
	err := dao.db.Model(&models.ChatNotification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}
