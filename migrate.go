package chat

import (
	"fmt"

	"github.com/Muadeel56/localconnect-plus/models"
	"gorm.io/gorm"
)

// chatTables 聊天核心拥有的表，按外键依赖顺序
func chatTables() []interface{} {
	return []interface{}{
		&models.Room{},
		&models.Participant{},
		&models.Message{},
		&models.ChatNotification{},
	}
}

// AutoMigrate 建表/补列。用户表归账号服务所有，不在这里迁移
func (c *ChatEngine) AutoMigrate() error {
	return Migrate(c.config.DB, false)
}

// Migrate 供 cmd 与测试直接调用；withUsers 仅用于本地开发（sqlite）时没有账号服务的场景
func Migrate(db *gorm.DB, withUsers bool) error {
	tables := chatTables()
	if withUsers {
		tables = append([]interface{}{&models.User{}}, tables...)
	}
	if err := db.AutoMigrate(tables...); err != nil {
		return fmt.Errorf("chat: auto migrate: %w", err)
	}
	return nil
}
