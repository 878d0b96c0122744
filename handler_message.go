package chat

import (
	"net/http"
	"strconv"

	"github.com/Muadeel56/localconnect-plus/message"
	"github.com/Muadeel56/localconnect-plus/models"
	"github.com/Muadeel56/localconnect-plus/repository"
	"github.com/Muadeel56/localconnect-plus/response"
	"github.com/Muadeel56/localconnect-plus/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// -------------------- 消息（Message）相关接口 --------------------

const (
	defaultMessagePage = 100
	maxMessagePage     = 500
)

// SendMessageReq HTTP 发消息；与 WS chat_message 走同一条写入+广播链路
type SendMessageReq struct {
	RoomID      string `json:"room_id" binding:"required"`
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	FileURL     string `json:"file_url"`
	FileName    string `json:"file_name"`
	FileSize    *int64 `json:"file_size"`
	ReplyTo     string `json:"reply_to"`
}

// ContentReq 编辑 / 回复
type ContentReq struct {
	Content string `json:"content"`
}

// GinHandleSendMessage 发送消息
// @Summary 发送消息
// @Description 写入后广播到房间 WS，并给其他成员生成通知
// @Tags 消息
// @Accept json
// @Produce json
// @Param req body SendMessageReq true "消息"
// @Success 201 {object} response.Response{data=message.MessageDTO}
// @Failure 400 {object} response.Response "参数错误"
// @Failure 403 {object} response.Response "Not a participant"
// @Security BearerAuth
// @Router /messages [post]
func (c *ChatEngine) GinHandleSendMessage(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	var req SendMessageReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "room_id is required")
		return
	}
	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		badRequest(ctx, "invalid room_id")
		return
	}
	p := service.AppendParams{
		RoomID:  roomID,
		Sender:  who,
		Type:    req.MessageType,
		Content: req.Content,
		Attachment: models.Attachment{
			FileURL:  req.FileURL,
			FileName: req.FileName,
			FileSize: req.FileSize,
		},
	}
	if req.ReplyTo != "" {
		replyTo, err := uuid.Parse(req.ReplyTo)
		if err != nil {
			badRequest(ctx, "invalid reply_to")
			return
		}
		p.ReplyToID = &replyTo
	}

	msg, err := c.MsgService.Send(ctx.Request.Context(), p)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, response.Success(message.NewMessageDTO(msg)))
}

// GinHandleMessagesByRoom 房间消息
// @Summary 房间消息
// @Description 按 created_at,id 升序
// @Tags 消息
// @Produce json
// @Param room_id query string true "房间ID"
// @Param include_deleted query bool false "包含已删除(占位文本)"
// @Param limit query int false "条数(默认100,最大500)"
// @Param offset query int false "偏移"
// @Success 200 {object} response.Response{data=[]message.MessageDTO}
// @Failure 403 {object} response.Response "Not a participant"
// @Security BearerAuth
// @Router /messages/by_room [get]
func (c *ChatEngine) GinHandleMessagesByRoom(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	roomID, err := uuid.Parse(ctx.Query("room_id"))
	if err != nil {
		badRequest(ctx, "room_id is required")
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(defaultMessagePage)))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	if limit <= 0 {
		limit = defaultMessagePage
	}
	if limit > maxMessagePage {
		limit = maxMessagePage
	}
	if offset < 0 {
		offset = 0
	}
	includeDeleted, _ := strconv.ParseBool(ctx.DefaultQuery("include_deleted", "false"))

	list, err := c.MsgService.ListByRoom(who, roomID, repository.ListOptions{
		IncludeDeleted: includeDeleted,
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	out := make([]message.MessageDTO, 0, len(list))
	for i := range list {
		out = append(out, message.NewMessageDTO(&list[i]))
	}
	ctx.JSON(http.StatusOK, response.Success(out))
}

// GinHandleGetMessage 单条消息
// @Summary 单条消息
// @Tags 消息
// @Produce json
// @Param id path string true "消息ID"
// @Success 200 {object} response.Response{data=message.MessageDTO}
// @Failure 404 {object} response.Response "Message not found"
// @Security BearerAuth
// @Router /messages/{id} [get]
func (c *ChatEngine) GinHandleGetMessage(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	msg, err := c.MsgService.Get(who, id)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(message.NewMessageDTO(msg)))
}

// GinHandleEditMessage 编辑消息
// @Summary 编辑消息
// @Description 仅发送者本人；已删除的消息不可编辑
// @Tags 消息
// @Accept json
// @Produce json
// @Param id path string true "消息ID"
// @Param req body ContentReq true "新内容"
// @Success 200 {object} response.Response{data=message.MessageDTO}
// @Failure 403 {object} response.Response "Not authorized"
// @Security BearerAuth
// @Router /messages/{id}/edit [post]
func (c *ChatEngine) GinHandleEditMessage(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	var req ContentReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Content is required")
		return
	}
	msg, err := c.MsgService.Edit(who, id, req.Content)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(message.NewMessageDTO(msg)))
}

// GinHandleReplyMessage 回复消息
// @Summary 回复消息
// @Tags 消息
// @Accept json
// @Produce json
// @Param id path string true "被回复的消息ID"
// @Param req body ContentReq true "回复内容"
// @Success 201 {object} response.Response{data=message.MessageDTO}
// @Failure 403 {object} response.Response "Not a participant"
// @Failure 404 {object} response.Response "Message not found"
// @Security BearerAuth
// @Router /messages/{id}/reply [post]
func (c *ChatEngine) GinHandleReplyMessage(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	var req ContentReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Content is required")
		return
	}
	msg, err := c.MsgService.Reply(ctx.Request.Context(), who, id, req.Content)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, response.Success(message.NewMessageDTO(msg)))
}

// GinHandleDeleteMessage 删除消息（软删）
// @Summary 删除消息
// @Description 发送者本人、房间管理员/版主或站点管理员
// @Tags 消息
// @Produce json
// @Param id path string true "消息ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response "Not authorized"
// @Security BearerAuth
// @Router /messages/{id} [delete]
func (c *ChatEngine) GinHandleDeleteMessage(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.MsgService.SoftDelete(who, id); err != nil {
		c.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil, "Message deleted"))
}
