package chat

import (
	"net/http"

	"github.com/Muadeel56/localconnect-plus/message"
	"github.com/Muadeel56/localconnect-plus/response"
	"github.com/Muadeel56/localconnect-plus/service"
	"github.com/gin-gonic/gin"
)

// -------------------- 房间（Room）相关接口 --------------------

// AddParticipantReq 管理员拉人
type AddParticipantReq struct {
	UserID uint64 `json:"user_id" binding:"required"`
}

// GinHandleListRooms 我的房间
// @Summary 我的房间列表
// @Description 当前用户作为活跃成员所在的房间，按最近活跃倒序，附带未读数
// @Tags 房间
// @Produce json
// @Success 200 {object} response.Response{data=[]message.RoomDTO} "房间列表"
// @Failure 401 {object} response.Response "未登录"
// @Security BearerAuth
// @Router /rooms [get]
func (c *ChatEngine) GinHandleListRooms(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	rooms, err := c.RoomService.ListUserRooms(who.UserID)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(rooms))
}

// GinHandleCreateRoom 创建房间
// @Summary 创建房间
// @Description 创建者自动成为房间管理员
// @Tags 房间
// @Accept json
// @Produce json
// @Param req body service.CreateRoomReq true "创建参数"
// @Success 201 {object} response.Response{data=message.RoomDTO} "房间信息"
// @Failure 400 {object} response.Response "参数错误"
// @Security BearerAuth
// @Router /rooms [post]
func (c *ChatEngine) GinHandleCreateRoom(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	var req service.CreateRoomReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err.Error())
		return
	}
	room, err := c.RoomService.CreateRoom(who, req)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	dto := message.NewRoomDTO(room)
	dto.ParticipantCount = 1
	ctx.JSON(http.StatusCreated, response.Success(dto))
}

// GinHandleGetRoom 房间详情
// @Summary 房间详情
// @Tags 房间
// @Produce json
// @Param id path string true "房间ID"
// @Success 200 {object} response.Response{data=message.RoomDTO} "房间信息"
// @Failure 404 {object} response.Response "房间不存在"
// @Security BearerAuth
// @Router /rooms/{id} [get]
func (c *ChatEngine) GinHandleGetRoom(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	roomID, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	room, err := c.RoomService.GetRoom(who, roomID)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	dto, err := c.RoomService.RoomSummary(room, who.UserID)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(dto))
}

// GinHandleJoinRoom 加入房间
// @Summary 加入房间
// @Description 已是活跃成员返回 409；退出过的成员重新加入
// @Tags 房间
// @Produce json
// @Param id path string true "房间ID"
// @Success 200 {object} response.Response{data=message.ParticipantDTO}
// @Failure 403 {object} response.Response "私有房间"
// @Failure 409 {object} response.Response "Already a participant"
// @Security BearerAuth
// @Router /rooms/{id}/join [post]
func (c *ChatEngine) GinHandleJoinRoom(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	roomID, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	p, err := c.RoomService.JoinRoom(who, roomID)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	p.User.ID, p.User.Username, p.User.Avatar = who.UserID, who.Username, who.Avatar
	ctx.JSON(http.StatusOK, response.Success(message.NewParticipantDTO(p), "Successfully joined chat room"))
}

// GinHandleLeaveRoom 退出房间
// @Summary 退出房间
// @Tags 房间
// @Produce json
// @Param id path string true "房间ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response "Not a participant"
// @Security BearerAuth
// @Router /rooms/{id}/leave [post]
func (c *ChatEngine) GinHandleLeaveRoom(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	roomID, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.MemberService.Leave(roomID, who.UserID); err != nil {
		c.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil, "Successfully left chat room"))
}

// GinHandleRoomParticipants 房间成员
// @Summary 房间成员
// @Tags 房间
// @Produce json
// @Param id path string true "房间ID"
// @Success 200 {object} response.Response{data=[]message.ParticipantDTO}
// @Failure 404 {object} response.Response "不是成员"
// @Security BearerAuth
// @Router /rooms/{id}/participants [get]
func (c *ChatEngine) GinHandleRoomParticipants(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	roomID, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	list, err := c.MemberService.ListParticipants(roomID, who.UserID)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	out := make([]message.ParticipantDTO, 0, len(list))
	for i := range list {
		out = append(out, message.NewParticipantDTO(&list[i]))
	}
	ctx.JSON(http.StatusOK, response.Success(out))
}

// GinHandleOnlineUsers 房间在线用户
// @Summary 在线用户
// @Description 当前持有该房间 WS 连接的用户（跨节点）
// @Tags 房间
// @Produce json
// @Param id path string true "房间ID"
// @Success 200 {object} response.Response{data=[]message.SenderDTO}
// @Security BearerAuth
// @Router /rooms/{id}/online_users [get]
func (c *ChatEngine) GinHandleOnlineUsers(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	roomID, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	users, err := c.PresenceService.OnlineUsers(ctx.Request.Context(), who, roomID)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	out := make([]message.SenderDTO, 0, len(users))
	for _, u := range users {
		out = append(out, message.NewSenderDTO(u))
	}
	ctx.JSON(http.StatusOK, response.Success(out))
}

// GinHandleMarkRoomRead 房间标记已读
// @Summary 标记已读
// @Tags 房间
// @Produce json
// @Param id path string true "房间ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response "Not a participant"
// @Security BearerAuth
// @Router /rooms/{id}/mark_as_read [post]
func (c *ChatEngine) GinHandleMarkRoomRead(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	roomID, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.ReadReceipt.MarkRoomRead(ctx.Request.Context(), who, roomID); err != nil {
		c.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil, "Marked as read"))
}

// GinHandleAddParticipant 管理员拉人
// @Summary 添加成员
// @Tags 房间
// @Accept json
// @Produce json
// @Param id path string true "房间ID"
// @Param req body AddParticipantReq true "用户"
// @Success 200 {object} response.Response{data=message.ParticipantDTO}
// @Failure 403 {object} response.Response "Only room admins can add participants"
// @Failure 404 {object} response.Response "User not found"
// @Failure 409 {object} response.Response "User is already a participant"
// @Security BearerAuth
// @Router /rooms/{id}/add_participant [post]
func (c *ChatEngine) GinHandleAddParticipant(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	roomID, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	var req AddParticipantReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "user_id is required")
		return
	}
	p, err := c.MemberService.AddParticipant(who, roomID, req.UserID)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(message.NewParticipantDTO(p), "Added "+p.User.Username+" to the chat room"))
}

// GinHandleDeactivateRoom 停用房间
// @Summary 停用房间
// @Description 房间管理员或站点管理员；停用后不再接收消息
// @Tags 房间
// @Produce json
// @Param id path string true "房间ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response "Not authorized"
// @Security BearerAuth
// @Router /rooms/{id}/deactivate [post]
func (c *ChatEngine) GinHandleDeactivateRoom(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	roomID, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.RoomService.Deactivate(who, roomID); err != nil {
		c.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(nil))
}
