package service

import (
	"github.com/Muadeel56/localconnect-plus/cons"
	"github.com/Muadeel56/localconnect-plus/models"
	"github.com/google/uuid"
)

// Action 需要管理权限的操作
type Action string

const (
	ActionSetRole        Action = "set_role"        // 修改成员角色
	ActionAddParticipant Action = "add_participant" // 拉人进房间
	ActionDeleteMessage  Action = "delete_message"  // 删除他人消息
	ActionDeactivateRoom Action = "deactivate_room" // 停用房间
)

// CanModerate 纯函数：只看调用者的全局角色和其在该房间的成员行。
// membership 为空、已退出或不属于 roomID 时按非成员处理。
func CanModerate(who Identity, membership *models.Participant, roomID uuid.UUID, action Action) bool {
	if who.IsAnonymous() {
		return false
	}
	roomRole := ""
	if membership != nil && membership.IsActive && membership.RoomID == roomID && membership.UserID == who.UserID {
		roomRole = membership.Role
	}
	siteAdmin := who.Role == cons.UserRoleAdmin

	switch action {
	case ActionSetRole, ActionAddParticipant:
		return roomRole == cons.RoleAdmin
	case ActionDeleteMessage:
		return siteAdmin || roomRole == cons.RoleAdmin || roomRole == cons.RoleModerator
	case ActionDeactivateRoom:
		return siteAdmin || roomRole == cons.RoleAdmin
	}
	return false
}
