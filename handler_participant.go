package chat

import (
	"net/http"

	"github.com/Muadeel56/localconnect-plus/message"
	"github.com/Muadeel56/localconnect-plus/response"
	"github.com/gin-gonic/gin"
)

// UpdateRoleReq 修改成员角色
type UpdateRoleReq struct {
	Role string `json:"role" binding:"required"`
}

// GinHandleUpdateRole 修改成员角色
// @Summary 修改成员角色
// @Description 仅房间管理员；role 取 member/moderator/admin
// @Tags 成员
// @Accept json
// @Produce json
// @Param id path uint64 true "成员记录ID"
// @Param req body UpdateRoleReq true "角色"
// @Success 200 {object} response.Response{data=message.ParticipantDTO}
// @Failure 400 {object} response.Response "Invalid role"
// @Failure 403 {object} response.Response "Only room admins can change roles"
// @Security BearerAuth
// @Router /participants/{id}/update_role [post]
func (c *ChatEngine) GinHandleUpdateRole(ctx *gin.Context) {
	who, ok := identity(ctx)
	if !ok {
		return
	}
	id, ok := uintParam(ctx, "id")
	if !ok {
		return
	}
	var req UpdateRoleReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "role is required")
		return
	}
	p, err := c.MemberService.SetRoleByParticipantID(who, id, req.Role)
	if err != nil {
		c.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response.Success(message.NewParticipantDTO(p)))
}
