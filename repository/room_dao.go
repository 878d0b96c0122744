package repository

import (
	"time"

	"github.com/Muadeel56/localconnect-plus/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoomDAO 封装 Room 相关的数据库操作
//
// 约定：
// - 只做数据访问，不做权限判断、广播等业务编排。
// - 事务边界由 service 控制；如需在事务中执行，请使用 WithDB(tx)。
type RoomDAO struct {
	db *gorm.DB
}

func NewRoomDAO(db *gorm.DB) *RoomDAO {
	return &RoomDAO{db: db}
}

// WithDB 用于在事务（tx）中复用 DAO
func (dao *RoomDAO) WithDB(db *gorm.DB) *RoomDAO {
	if db == nil {
		return dao
	}
	return &RoomDAO{db: db}
}

func (dao *RoomDAO) Create(room *models.Room) error {
	return dao.db.Create(room).Error
}

// FindByID 不区分是否停用
func (dao *RoomDAO) FindByID(id uuid.UUID) (*models.Room, error) {
	var room models.Room
	if err := dao.db.Where("id = ?", id).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// FindActiveByID 只查启用中的房间
func (dao *RoomDAO) FindActiveByID(id uuid.UUID) (*models.Room, error) {
	var room models.Room
	if err := dao.db.Where("id = ? AND is_active = ?", id, true).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// ListByUser 用户作为活跃成员所在的启用房间，按最近活跃倒序
func (dao *RoomDAO) ListByUser(userID uint64) ([]models.Room, error) {
	var rooms []models.Room
	err := dao.db.Model(&models.Room{}).
		Joins("JOIN "+models.Participant{}.TableName()+" p ON p.room_id = "+models.Room{}.TableName()+".id").
		Where("p.user_id = ? AND p.is_active = ? AND "+models.Room{}.TableName()+".is_active = ?", userID, true, true).
		Order(models.Room{}.TableName() + ".updated_at DESC").
		Find(&rooms).Error
	return rooms, err
}

// Touch 刷新 updated_at（追加消息时调用）
func (dao *RoomDAO) Touch(id uuid.UUID, now time.Time) error {
	return dao.db.Model(&models.Room{}).
		Where("id = ?", id).
		UpdateColumn("updated_at", now).Error
}

// Deactivate 停用房间，不做物理删除
func (dao *RoomDAO) Deactivate(id uuid.UUID) error {
	return dao.db.Model(&models.Room{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": false}).Error
}
