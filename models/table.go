package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	prefix = "chat_"
)

// User 用户表（账号服务所有，聊天核心只读）
type User struct {
	ID        uint64 `gorm:"primarykey"`
	Username  string `gorm:"size:150;uniqueIndex;not null"` // 用户名
	Avatar    string `gorm:"size:500"`                      // 头像 (profile_picture)
	Role      string `gorm:"size:20;default:user"`          // 全局角色: user/volunteer/admin
	IsActive  bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return prefix + "user"
}

// Room 聊天房间表
type Room struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name        string    `gorm:"size:100;not null"`                  // 房间名称
	Type        string    `gorm:"column:room_type;size:20;default:community;index"` // 类型: community/private/event
	Description string    `gorm:"type:text"`                          // 描述
	CreatorID   uint64    `gorm:"index"`                              // 创建者 ID
	IsActive    bool      `gorm:"default:true;index"`                 // 停用后不再接收消息，不做物理删除
	CreatedAt   time.Time
	UpdatedAt   time.Time `gorm:"index"` // 每次追加消息都会刷新，用于按活跃度排序

	// 关联关系
	Creator User `gorm:"foreignKey:CreatorID"`
}

func (Room) TableName() string {
	return prefix + "room"
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Participant 房间成员表，(room_id, user_id) 唯一；退出只置 is_active=false
type Participant struct {
	ID         uint64     `gorm:"primarykey"`
	RoomID     uuid.UUID  `gorm:"type:char(36);index:idx_room_user,unique;not null"` // 房间 ID
	UserID     uint64     `gorm:"index:idx_room_user,unique;not null"`               // 用户 ID
	Role       string     `gorm:"size:20;default:member"`                            // 角色: member/moderator/admin
	JoinedAt   time.Time  // 加入时间
	LastReadAt *time.Time // 已读游标，为空表示从未读过
	IsActive   bool       `gorm:"default:true;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// 关联关系
	User User `gorm:"foreignKey:UserID"`
}

func (Participant) TableName() string {
	return prefix + "participant"
}

// Attachment 附件描述（图片/文件消息）
type Attachment struct {
	FileURL  string `gorm:"size:500" json:"file_url"`
	FileName string `gorm:"size:255" json:"file_name"`
	FileSize *int64 `json:"file_size"`
}

// MessageState 消息的可变展示状态。
// 编辑和软删只允许改这里的字段，ID/房间/发送者/创建时间等排序字段创建后不可变。
type MessageState struct {
	Content   string `gorm:"type:text;not null"`
	IsEdited  bool   `gorm:"default:false"`
	EditedAt  *time.Time
	IsDeleted bool `gorm:"default:false;index"`
	DeletedAt *time.Time
}

// Message 消息表
type Message struct {
	ID         uuid.UUID  `gorm:"type:char(36);primaryKey"`
	RoomID     uuid.UUID  `gorm:"type:char(36);index:idx_room_created,priority:1;not null"` // 房间 ID
	SenderID   uint64     `gorm:"index;not null"`                                           // 发送者 ID
	Type       string     `gorm:"column:message_type;size:20;default:text"`                 // 消息类型: text/image/file/system
	Attachment Attachment `gorm:"embedded"`
	ReplyToID  *uuid.UUID `gorm:"type:char(36);index"` // 回复的消息 ID（只保留一层，回复的回复指向根消息）
	CreatedAt  time.Time  `gorm:"index:idx_room_created,priority:2"`
	UpdatedAt  time.Time

	State MessageState `gorm:"embedded"`

	// 关联关系
	Sender  User     `gorm:"foreignKey:SenderID"`
	ReplyTo *Message `gorm:"foreignKey:ReplyToID"`
}

func (Message) TableName() string {
	return prefix + "message"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// DisplayContent 对外展示的内容（已删除消息返回占位文本）
func (m *Message) DisplayContent() string {
	return DisplayContent(m.Type, m.Attachment, m.State)
}

// ChatNotification 聊天通知表（每次发消息给其他活跃成员各插入一行）
type ChatNotification struct {
	ID          uint64             `gorm:"primarykey"`
	RecipientID uint64             `gorm:"index:idx_recipient_read,priority:1;not null"` // 接收者
	RoomID      uuid.UUID          `gorm:"type:char(36);index;not null"`
	Target      NotificationTarget `gorm:"embedded;embeddedPrefix:target_"`
	Type        string             `gorm:"column:notification_type;size:20;default:message"`
	Content     string             `gorm:"size:255"`
	Payload     datatypes.JSON     `gorm:"type:json"` // 推送快照（房间名/发送者/预览）
	IsRead      bool               `gorm:"default:false;index:idx_recipient_read,priority:2"`
	CreatedAt   time.Time          `gorm:"index"`

	Room Room `gorm:"foreignKey:RoomID"`
}

func (ChatNotification) TableName() string {
	return prefix + "notification"
}
