package middleware

import (
	"context"
	"net/http"

	"github.com/Muadeel56/localconnect-plus/response"
	"github.com/Muadeel56/localconnect-plus/service"
	"github.com/gin-gonic/gin"
)

const (
	// ContextUserIDKey gin context 里保存 user id 的 key
	ContextUserIDKey   = "user_id"
	ContextIdentityKey = "identity"
	ContextTokenKey    = "token"
)

// Authenticator 中间件需要的鉴权能力，*service.AuthService 实现了它
type Authenticator interface {
	ExtractToken(r *http.Request) string
	Verify(ctx context.Context, token string) (service.Identity, error)
}

// AuthOptions 可选配置。
type AuthOptions struct {
	// UserIDKey 默认 user_id
	UserIDKey string
	// IdentityKey 默认 identity
	IdentityKey string
	// TokenKey 默认 token
	TokenKey string
}

func (o *AuthOptions) withDefaults() AuthOptions {
	var out AuthOptions
	if o != nil {
		out = *o
	}
	if out.UserIDKey == "" {
		out.UserIDKey = ContextUserIDKey
	}
	if out.IdentityKey == "" {
		out.IdentityKey = ContextIdentityKey
	}
	if out.TokenKey == "" {
		out.TokenKey = ContextTokenKey
	}
	return out
}

/*
	GinAuthMiddleware Gin 鉴权中间件：

- 优先从 Authorization: Bearer <token> 读取，没有再读 query 参数 token
- 校验签名/过期/黑名单并加载用户，成功后写入 gin.Context

使用：router.Use(middleware.GinAuthMiddleware(authService, nil))
*/
func GinAuthMiddleware(auth Authenticator, opt *AuthOptions) gin.HandlerFunc {
	cfg := opt.withDefaults()

	return func(c *gin.Context) {
		if auth == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(response.CodeInternalError, "auth service is nil"))
			return
		}

		token := auth.ExtractToken(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "missing token"))
			return
		}

		id, err := auth.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, err.Error()))
			return
		}

		c.Set(cfg.UserIDKey, id.UserID)
		c.Set(cfg.IdentityKey, id)
		c.Set(cfg.TokenKey, token)
		c.Next()
	}
}

// IdentityFrom 读取中间件写入的调用者身份
func IdentityFrom(c *gin.Context) (service.Identity, bool) {
	v, ok := c.Get(ContextIdentityKey)
	if !ok {
		return service.Identity{}, false
	}
	id, ok := v.(service.Identity)
	return id, ok && !id.IsAnonymous()
}
