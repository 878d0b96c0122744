package chat

import (
	"github.com/Muadeel56/localconnect-plus/logger"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type ServiceConfig struct {
	Debug bool
}

type Config struct {
	DB     *gorm.DB
	RDB    *redis.Client // 为空时单节点运行：内存广播 + 内存在线表，不检查 token 黑名单
	Logger *logger.Logger

	// JWTSecret 与账号服务签发 access token 使用同一把 HS256 密钥
	JWTSecret string

	// NodeID 多节点部署时区分消息来源，为空自动生成
	NodeID string

	// AllowedOrigins WS 握手允许的 Origin，为空不校验
	AllowedOrigins []string

	// SendBuffer 每个连接的发送缓冲，满了丢弃
	SendBuffer int

	Service ServiceConfig
}

type Option func(*Config)

func WithDB(db *gorm.DB) Option {
	return func(c *Config) {
		c.DB = db
	}
}

func WithRDB(rdb *redis.Client) Option {
	return func(c *Config) {
		c.RDB = rdb
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

func WithJWTSecret(secret string) Option {
	return func(c *Config) {
		c.JWTSecret = secret
	}
}

func WithNodeID(id string) Option {
	return func(c *Config) {
		c.NodeID = id
	}
}

func WithAllowedOrigins(origins ...string) Option {
	return func(c *Config) {
		c.AllowedOrigins = origins
	}
}

func WithSendBuffer(n int) Option {
	return func(c *Config) {
		c.SendBuffer = n
	}
}

func WithServiceDebug(debug bool) Option {
	return func(c *Config) {
		c.Service.Debug = debug
	}
}
