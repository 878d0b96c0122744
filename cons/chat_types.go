package cons

// 房间类型
const (
	RoomTypeCommunity = "community" // 社区房间
	RoomTypePrivate   = "private"   // 私聊
	RoomTypeEvent     = "event"     // 活动房间
)

// 房间成员角色
const (
	RoleMember    = "member"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// 消息类型
const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeFile   = "file"
	MessageTypeSystem = "system"
)

// 用户全局角色（由账号服务维护，聊天侧只读）
const (
	UserRoleUser      = "user"
	UserRoleVolunteer = "volunteer"
	UserRoleAdmin     = "admin"
)

func ValidRoomType(t string) bool {
	return t == RoomTypeCommunity || t == RoomTypePrivate || t == RoomTypeEvent
}

func ValidRole(r string) bool {
	return r == RoleMember || r == RoleModerator || r == RoleAdmin
}

func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile, MessageTypeSystem:
		return true
	}
	return false
}
