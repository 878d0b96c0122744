package broadcast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type groupKind uint8

const (
	kindRoom groupKind = iota + 1
	kindUser
)

const (
	roomGroupPrefix = "chat_"
	userGroupPrefix = "notifications_"
)

// Group 广播组。只能通过 RoomGroup / UserGroup 构造，房间组和用户组不会撞名。
type Group struct {
	kind groupKind
	id   string
}

// RoomGroup 房间广播组
func RoomGroup(roomID uuid.UUID) Group {
	return Group{kind: kindRoom, id: roomID.String()}
}

// UserGroup 用户个人通知组
func UserGroup(userID uint64) Group {
	return Group{kind: kindUser, id: strconv.FormatUint(userID, 10)}
}

func (g Group) IsZero() bool {
	return g.kind == 0
}

// Kind room / user，用作 metrics label
func (g Group) Kind() string {
	switch g.kind {
	case kindRoom:
		return "room"
	case kindUser:
		return "user"
	}
	return "unknown"
}

func (g Group) String() string {
	switch g.kind {
	case kindRoom:
		return roomGroupPrefix + g.id
	case kindUser:
		return userGroupPrefix + g.id
	}
	return ""
}

// ParseGroup String() 的逆操作，跨节点转发时使用
func ParseGroup(s string) (Group, error) {
	switch {
	case strings.HasPrefix(s, userGroupPrefix):
		uid, err := strconv.ParseUint(strings.TrimPrefix(s, userGroupPrefix), 10, 64)
		if err != nil {
			return Group{}, fmt.Errorf("invalid user group %q: %w", s, err)
		}
		return UserGroup(uid), nil
	case strings.HasPrefix(s, roomGroupPrefix):
		rid, err := uuid.Parse(strings.TrimPrefix(s, roomGroupPrefix))
		if err != nil {
			return Group{}, fmt.Errorf("invalid room group %q: %w", s, err)
		}
		return RoomGroup(rid), nil
	}
	return Group{}, fmt.Errorf("unknown group %q", s)
}
