package chat

import (
	"net/http"
	"strconv"

	"github.com/Muadeel56/localconnect-plus/message"
	"github.com/Muadeel56/localconnect-plus/response"
	"github.com/gin-gonic/gin"
)

// -------------------- 通知（Notification）相关接口 --------------------

// NotificationPage 通知分页
type NotificationPage struct {
	Items      []message.NotificationDTO `json:"items"`
	NextCursor uint64                    `json:"next_cursor"` // 本页最后一条 id；空页为 0
}

// GinHandleListNotifications 拉取通知
// @Summary 拉取通知
// @Tags 通知
// @Produce json
// @Param cursor query uint64 false "游标(上一页最小id)"
// @Param limit query int false "条数(默认50,最大200)"
// @Param unread_only query bool false "只看未读"
// @Success 200 {object} response.Response{data=NotificationPage}
// @Security BearerAuth
// @Router /notifications [get]
func (c *ChatEngine) GinHandleListNotifications(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "0"))
	cursor, _ := strconv.ParseUint(ctx.DefaultQuery("cursor", "0"), 10, 64)
	unreadOnly, _ := strconv.ParseBool(ctx.DefaultQuery("unread_only", "false"))

	list, err := c.NotifyService.List(who.UserID, cursor, limit, unreadOnly)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	page := NotificationPage{Items: make([]message.NotificationDTO, 0, len(list))}
	for i := range list {
		page.Items = append(page.Items, message.NewNotificationDTO(&list[i]))
	}
	if n := len(list); n > 0 {
		page.NextCursor = list[n-1].ID
	}
	ctx.JSON(http.StatusOK, response.Success(page))
}

// GinHandleMarkNotificationRead 标记单条已读
// @Summary 标记通知已读
// @Tags 通知
// @Produce json
// @Param id path uint64 true "通知ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response "Notification not found"
// @Security BearerAuth
// @Router /notifications/{id}/mark_as_read [post]
func (c *ChatEngine) GinHandleMarkNotificationRead(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := uintParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.NotifyService.MarkRead(who.UserID, id); err != nil {
		c.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}

// GinHandleMarkAllNotificationsRead 全部已读
// @Summary 全部通知已读
// @Tags 通知
// @Produce json
// @Success 200 {object} response.Response{data=map[string]int64} "data.updated"
// @Security BearerAuth
// @Router /notifications/mark_all_as_read [post]
func (c *ChatEngine) GinHandleMarkAllNotificationsRead(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	n, err := c.NotifyService.MarkAllRead(who.UserID)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(gin.H{"updated": n}))
}

// GinHandleNotificationUnreadCount 未读数
// @Summary 通知未读数
// @Tags 通知
// @Produce json
// @Success 200 {object} response.Response{data=map[string]int64} "data.unread_count"
// @Security BearerAuth
// @Router /notifications/unread_count [get]
func (c *ChatEngine) GinHandleNotificationUnreadCount(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	n, err := c.NotifyService.UnreadCount(who.UserID)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(gin.H{"unread_count": n}))
}
