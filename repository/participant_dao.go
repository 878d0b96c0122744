package repository

import (
	"time"

	"github.com/Muadeel56/localconnect-plus/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParticipantDAO 封装房间成员相关的数据库操作
type ParticipantDAO struct {
	db *gorm.DB
}

func NewParticipantDAO(db *gorm.DB) *ParticipantDAO {
	return &ParticipantDAO{db: db}
}

// WithDB 用于在事务（tx）中复用 DAO
func (dao *ParticipantDAO) WithDB(db *gorm.DB) *ParticipantDAO {
	if db == nil {
		return dao
	}
	return &ParticipantDAO{db: db}
}

func (dao *ParticipantDAO) Create(p *models.Participant) error {
	return dao.db.Create(p).Error
}

// Find 查成员行（包含已退出的）
func (dao *ParticipantDAO) Find(roomID uuid.UUID, userID uint64) (*models.Participant, error) {
	var p models.Participant
	if err := dao.db.Where("room_id = ? AND user_id = ?", roomID, userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindActive 查活跃成员行
func (dao *ParticipantDAO) FindActive(roomID uuid.UUID, userID uint64) (*models.Participant, error) {
	var p models.Participant
	if err := dao.db.Where("room_id = ? AND user_id = ? AND is_active = ?", roomID, userID, true).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByID 按主键查
func (dao *ParticipantDAO) FindByID(id uint64) (*models.Participant, error) {
	var p models.Participant
	if err := dao.db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Reactivate 重新加入：复用原有行，角色重置
func (dao *ParticipantDAO) Reactivate(id uint64, role string, now time.Time) error {
	return dao.db.Model(&models.Participant{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": true, "role": role, "joined_at": now}).Error
}

// Deactivate 退出房间，返回受影响行数（0 表示本来就不是活跃成员）
func (dao *ParticipantDAO) Deactivate(roomID uuid.UUID, userID uint64) (int64, error) {
	res := dao.db.Model(&models.Participant{}).
		Where("room_id = ? AND user_id = ? AND is_active = ?", roomID, userID, true).
		Updates(map[string]any{"is_active": false})
	return res.RowsAffected, res.Error
}

// UpdateRole 修改活跃成员角色
func (dao *ParticipantDAO) UpdateRole(roomID uuid.UUID, userID uint64, role string) (int64, error) {
	res := dao.db.Model(&models.Participant{}).
		Where("room_id = ? AND user_id = ? AND is_active = ?", roomID, userID, true).
		Updates(map[string]any{"role": role})
	return res.RowsAffected, res.Error
}

// UpdateLastRead 写入已读游标
func (dao *ParticipantDAO) UpdateLastRead(roomID uuid.UUID, userID uint64, ts time.Time) (int64, error) {
	res := dao.db.Model(&models.Participant{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Updates(map[string]any{"last_read_at": ts})
	return res.RowsAffected, res.Error
}

// ListActive 房间活跃成员（带用户信息）
func (dao *ParticipantDAO) ListActive(roomID uuid.UUID) ([]models.Participant, error) {
	var list []models.Participant
	err := dao.db.Preload("User").
		Where("room_id = ? AND is_active = ?", roomID, true).
		Order("joined_at ASC").
		Find(&list).Error
	return list, err
}

// ListActiveUserIDs 房间活跃成员 ID，exclude 为 0 时不排除
func (dao *ParticipantDAO) ListActiveUserIDs(roomID uuid.UUID, exclude uint64) ([]uint64, error) {
	var ids []uint64
	q := dao.db.Model(&models.Participant{}).
		Where("room_id = ? AND is_active = ?", roomID, true)
	if exclude != 0 {
		q = q.Where("user_id <> ?", exclude)
	}
	err := q.Pluck("user_id", &ids).Error
	return ids, err
}

// CountActive 房间活跃成员数
func (dao *ParticipantDAO) CountActive(roomID uuid.UUID) (int64, error) {
	var n int64
	err := dao.db.Model(&models.Participant{}).
		Where("room_id = ? AND is_active = ?", roomID, true).
		Count(&n).Error
	return n, err
}
