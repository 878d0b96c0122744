package repository

import (
	"github.com/Muadeel56/localconnect-plus/models"
	"gorm.io/gorm"
)

// UserDAO 只读：用户由账号服务维护
type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{db: db}
}

func (dao *UserDAO) FindByID(id uint64) (*models.User, error) {
	var u models.User
	if err := dao.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByIDs 批量查询，不存在的 ID 直接忽略
func (dao *UserDAO) FindByIDs(ids []uint64) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	err := dao.db.Where("id IN ?", ids).Find(&users).Error
	return users, err
}
