package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const revokedKeyPrefix = "chat:token:revoked:"

// TokenService access token 黑名单。
// Redis Key 设计：
// - chat:token:revoked:{jti} -> "1" (String, TTL = token 剩余有效期)
//
// token 本身由账号服务签发，这里只记录被提前注销的 jti。
type TokenService struct {
	rdb *redis.Client
}

func NewTokenService(rdb *redis.Client) *TokenService {
	return &TokenService{rdb: rdb}
}

// Enabled 未配置 Redis 时跳过黑名单检查
func (s *TokenService) Enabled() bool {
	return s != nil && s.rdb != nil
}

func (s *TokenService) ensure() error {
	if !s.Enabled() {
		return fmt.Errorf("redis client is nil")
	}
	return nil
}

func (s *TokenService) revokedKey(jti string) string {
	return revokedKeyPrefix + jti
}

// Revoke 拉黑 jti；ttl<=0 说明 token 已过期，无需记录
func (s *TokenService) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := s.ensure(); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, s.revokedKey(jti), "1", ttl).Err()
}

func (s *TokenService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if err := s.ensure(); err != nil {
		return false, err
	}
	n, err := s.rdb.Exists(ctx, s.revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
