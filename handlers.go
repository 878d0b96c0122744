package chat

import (
	"context"
	"net/http"
	"time"

	"github.com/Muadeel56/localconnect-plus/middleware"
	"github.com/Muadeel56/localconnect-plus/response"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthTimeout = 2 * time.Second

// RegisterRoutes 挂载 WS 网关、REST 接口、/metrics 与 /healthz。
//
// 使用示例:
//
//	r := gin.New()
//	engine.RegisterRoutes(r)
func (c *ChatEngine) RegisterRoutes(r gin.IRouter) {
	// WS 端点 token 走 query，鉴权在升级之后用关闭码回报，所以不挂中间件
	for _, p := range []string{"/ws/chat/:room_id", "/ws/chat/:room_id/"} {
		r.GET(p, c.GinHandleRoomWS)
	}
	for _, p := range []string{"/ws/notifications", "/ws/notifications/"} {
		r.GET(p, c.GinHandleNotificationWS)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", c.GinHandleHealth)

	api := r.Group("/api/v1/chat", c.GinAuthMiddleware(nil))
	{
		rooms := api.Group("/rooms")
		rooms.GET("", c.GinHandleListRooms)
		rooms.POST("", c.GinHandleCreateRoom)
		rooms.GET("/:id", c.GinHandleGetRoom)
		rooms.POST("/:id/join", c.GinHandleJoinRoom)
		rooms.POST("/:id/leave", c.GinHandleLeaveRoom)
		rooms.GET("/:id/participants", c.GinHandleRoomParticipants)
		rooms.GET("/:id/online_users", c.GinHandleOnlineUsers)
		rooms.POST("/:id/mark_as_read", c.GinHandleMarkRoomRead)
		rooms.POST("/:id/add_participant", c.GinHandleAddParticipant)
		rooms.POST("/:id/deactivate", c.GinHandleDeactivateRoom)

		messages := api.Group("/messages")
		messages.POST("", c.GinHandleSendMessage)
		messages.GET("/by_room", c.GinHandleMessagesByRoom)
		messages.GET("/:id", c.GinHandleGetMessage)
		messages.POST("/:id/edit", c.GinHandleEditMessage)
		messages.POST("/:id/reply", c.GinHandleReplyMessage)
		messages.DELETE("/:id", c.GinHandleDeleteMessage)

		api.POST("/participants/:id/update_role", c.GinHandleUpdateRole)
		api.POST("/session/revoke", c.GinHandleRevokeToken)

		notifications := api.Group("/notifications")
		notifications.GET("", c.GinHandleListNotifications)
		notifications.POST("/mark_all_as_read", c.GinHandleMarkAllNotificationsRead)
		notifications.GET("/unread_count", c.GinHandleNotificationUnreadCount)
		notifications.POST("/:id/mark_as_read", c.GinHandleMarkNotificationRead)
	}
}

// GinHandleRoomWS 房间 WS
// 鉴权失败关闭码 4001，非房间成员 4003
func (c *ChatEngine) GinHandleRoomWS(ctx *gin.Context) {
	c.WsServer.ServeRoomWS(ctx.Writer, ctx.Request, ctx.Param("room_id"))
}

// GinHandleNotificationWS 用户通知 WS
func (c *ChatEngine) GinHandleNotificationWS(ctx *gin.Context) {
	c.WsServer.ServeNotificationWS(ctx.Writer, ctx.Request)
}

// GinHandleHealth 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} response.Response{data=map[string]string}
// @Failure 503 {object} response.Response{data=map[string]string}
// @Router /healthz [get]
func (c *ChatEngine) GinHandleHealth(ctx *gin.Context) {
	hctx, cancel := context.WithTimeout(ctx.Request.Context(), healthTimeout)
	defer cancel()

	status := gin.H{"db": "ok", "redis": "disabled"}
	healthy := true

	if sqlDB, err := c.config.DB.DB(); err != nil {
		status["db"], healthy = err.Error(), false
	} else if err := sqlDB.PingContext(hctx); err != nil {
		status["db"], healthy = err.Error(), false
	}
	if c.config.RDB != nil {
		status["redis"] = "ok"
		if err := c.config.RDB.Ping(hctx).Err(); err != nil {
			status["redis"], healthy = err.Error(), false
		}
	}
	status["connections"] = c.WsServer.Connections()

	if !healthy {
		c.log.Warn("health check failed", "status", status)
		ctx.JSON(http.StatusServiceUnavailable, &response.Response{
			Code: response.CodeInternalError,
			Msg:  "unhealthy",
			Data: status,
		})
		return
	}
	ctx.JSON(http.StatusOK, response.Success(status))
}

// GinHandleRevokeToken 注销当前 token
// @Summary 注销当前 token
// @Description 按 jti 拉黑到过期时间，之后该 token 的 REST 请求和 WS 握手都会被拒绝；未配置 Redis 时返回 500
// @Tags 会话
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /session/revoke [post]
func (c *ChatEngine) GinHandleRevokeToken(ctx *gin.Context) {
	if _, ok := identity(ctx); !ok {
		return
	}
	token := ctx.GetString(middleware.ContextTokenKey)
	if err := c.AuthService.RevokeToken(ctx.Request.Context(), token); err != nil {
		c.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil, "Token revoked"))
}

// HTTPMiddlewares 推荐的 gin 中间件：panic 恢复、请求日志、指标
func (c *ChatEngine) HTTPMiddlewares() []gin.HandlerFunc {
	return []gin.HandlerFunc{gin.Recovery(), middleware.RequestLogger(c.log), middleware.Metrics()}
}
