package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Muadeel56/localconnect-plus/repository"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// Identity 已认证的调用者；UserID 为 0 表示匿名
type Identity struct {
	UserID   uint64
	Username string
	Avatar   string
	Role     string // 全局角色
}

func (i Identity) IsAnonymous() bool { return i.UserID == 0 }

// IdentityProvider token -> Identity，REST 与 WS 共用
type IdentityProvider interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// Claims 访问令牌载荷，与账号服务签发的 access token 一致
type Claims struct {
	UserID    uint64 `json:"user_id"`
	TokenType string `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

// AuthService 提供鉴权核心能力，供 Gin 中间件与 WS 网关复用。
// - 解析 token（Bearer 优先，其次 query）
// - 校验 HS256 签名与过期时间
// - 校验 jti 是否已被注销（Redis）
// - 加载活跃用户
type AuthService struct {
	*Service
	secret []byte
	users  *repository.UserDAO
	tokens *TokenService
}

func NewAuthService(s *Service, secret string) *AuthService {
	a := &AuthService{Service: s, secret: []byte(secret)}
	if s != nil {
		if s.DB != nil {
			a.users = repository.NewUserDAO(s.DB)
		}
		a.tokens = NewTokenService(s.RDB)
	}
	return a
}

// ExtractToken 从 HTTP 请求中提取 token：优先 Authorization: Bearer，其次 query: token。
func (a *AuthService) ExtractToken(r *http.Request) string {
	if r == nil {
		return ""
	}

	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if ah != "" {
		parts := strings.SplitN(ah, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if r.URL == nil {
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// ParseClaims 只做签名/过期/类型校验，不访问存储
func (a *AuthService) ParseClaims(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, newErr(ErrUnauthenticated, "missing token")
	}
	if len(a.secret) == 0 {
		return nil, newErr(ErrUnauthenticated, "token verification not configured")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, &Error{Kind: ErrUnauthenticated, Msg: fmt.Sprintf("invalid token: %v", err)}
	}
	if claims.TokenType != "" && claims.TokenType != "access" {
		return nil, newErr(ErrUnauthenticated, "not an access token")
	}
	if claims.UserID == 0 {
		return nil, newErr(ErrUnauthenticated, "token has no user_id")
	}
	return claims, nil
}

// Verify 实现 IdentityProvider
func (a *AuthService) Verify(ctx context.Context, token string) (Identity, error) {
	claims, err := a.ParseClaims(token)
	if err != nil {
		return Identity{}, err
	}

	if claims.ID != "" && a.tokens.Enabled() {
		revoked, err := a.tokens.IsRevoked(ctx, claims.ID)
		if err != nil {
			// 查不到黑名单时拒绝，而不是放行
			a.logger().Warn("token revocation lookup failed", "jti", claims.ID, "error", err)
			return Identity{}, newErr(ErrUnauthenticated, "token status unavailable")
		}
		if revoked {
			return Identity{}, newErr(ErrUnauthenticated, "token revoked")
		}
	}

	if a.users == nil {
		return Identity{UserID: claims.UserID}, nil
	}
	u, err := a.users.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, newErr(ErrUnauthenticated, "user not found")
		}
		return Identity{}, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive {
		return Identity{}, newErr(ErrUnauthenticated, "user is inactive")
	}
	return Identity{UserID: u.ID, Username: u.Username, Avatar: u.Avatar, Role: u.Role}, nil
}

// IdentityFromRequest 握手阶段使用，调用方把任何错误视为匿名
func (a *AuthService) IdentityFromRequest(ctx context.Context, r *http.Request) (Identity, error) {
	return a.Verify(ctx, a.ExtractToken(r))
}

// RevokeToken 注销单个 token（按 jti 拉黑到过期时间）
func (a *AuthService) RevokeToken(ctx context.Context, token string) error {
	claims, err := a.ParseClaims(token)
	if err != nil {
		return err
	}
	if claims.ID == "" {
		return newErr(ErrValidation, "token has no jti")
	}
	ttl := claims.ExpiresAt.Sub(a.now())
	return a.tokens.Revoke(ctx, claims.ID, ttl)
}
