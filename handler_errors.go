package chat

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Muadeel56/localconnect-plus/middleware"
	"github.com/Muadeel56/localconnect-plus/response"
	"github.com/Muadeel56/localconnect-plus/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// writeError 按错误分类映射 HTTP 状态码和业务码；未分类错误不向客户端暴露细节
func (c *ChatEngine) writeError(ctx *gin.Context, err error) {
	var status, code int
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		status, code = http.StatusUnauthorized, response.CodeTokenInvalid
	case errors.Is(err, service.ErrForbidden):
		status, code = http.StatusForbidden, response.CodePermissionDeny
	case errors.Is(err, service.ErrValidation):
		status, code = http.StatusBadRequest, response.CodeParamError
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, response.CodeNotFound
	case errors.Is(err, service.ErrConflict):
		status, code = http.StatusConflict, response.CodeConflict
	default:
		c.log.Error("request failed", "method", ctx.Request.Method, "path", ctx.FullPath(), "error", err)
		_ = ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, response.Error(response.CodeInternalError, "internal error"))
		return
	}
	ctx.JSON(status, response.Error(code, err.Error()))
}

// identity 鉴权中间件之后调用；缺失时直接写 401
func identity(ctx *gin.Context) (service.Identity, bool) {
	who, ok := middleware.IdentityFrom(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, response.Error(response.CodeTokenInvalid, "user_id not found"))
		return service.Identity{}, false
	}
	return who, true
}

func uuidParam(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

func uintParam(ctx *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, "invalid "+name))
		return 0, false
	}
	return id, true
}

func badRequest(ctx *gin.Context, msg string) {
	ctx.JSON(http.StatusBadRequest, response.Error(response.CodeParamError, msg))
}
