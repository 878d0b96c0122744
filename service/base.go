package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Muadeel56/localconnect-plus/broadcast"
	"github.com/Muadeel56/localconnect-plus/logger"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const publishTimeout = 5 * time.Second

// Service 基础服务，包含数据库、Redis、日志和广播
type Service struct {
	DB  *gorm.DB
	RDB *redis.Client // 可选：presence / token 黑名单
	Log *logger.Logger

	// Fabric 广播发布接口，service 不直接依赖 ws 层
	Fabric broadcast.Publisher

	// Clock 测试时可替换
	Clock func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) logger() *logger.Logger {
	if s == nil || s.Log == nil {
		return logger.Nop()
	}
	return s.Log
}

// publishJSON 尽力而为：失败只记日志，不影响主流程
func (s *Service) publishJSON(ctx context.Context, g broadcast.Group, v any) {
	if s == nil || s.Fabric == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		s.logger().Error("marshal event failed", "group", g.String(), "error", err)
		return
	}
	// 发布发生在落库之后，发起方断开不能取消对其他人的投递
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.Fabric.Publish(pctx, g, b); err != nil {
		s.logger().Warn("publish failed", "group", g.String(), "error", err)
	}
}
