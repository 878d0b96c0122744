package message

// WS 上行帧类型（client -> server）
const (
	TypeChatMessage  = "chat_message"  // 发送消息；type 缺省时也按发送消息处理
	TypeTyping       = "typing"        // 正在输入
	TypeReadMessages = "read_messages" // 已读
)

// WS 下行帧类型（server -> client）
const (
	TypeConnectionEstablished             = "connection_established"
	TypeMessagesRead                      = "messages_read"
	TypeNotificationConnectionEstablished = "notification_connection_established"
	TypeChatNotification                  = "chat_notification"
)

// 网关关闭码：客户端据此区分“重新登录”和“申请加入房间”
const (
	CloseUnauthenticated = 4001 // 未登录 / token 无效或过期
	CloseNotParticipant  = 4003 // 已登录但不是房间活跃成员
)

// ChatMessageReq 发送消息
type ChatMessageReq struct {
	Type        string `json:"type"`
	Message     string `json:"message"`      // 文本内容
	MessageType string `json:"message_type"` // text/image/file/system，默认 text
	FileURL     string `json:"file_url"`
	FileName    string `json:"file_name"`
	FileSize    *int64 `json:"file_size"`
	ReplyTo     string `json:"reply_to"` // 被回复消息 ID，可选
}

// TypingReq 正在输入
type TypingReq struct {
	Type     string `json:"type"`
	IsTyping bool   `json:"is_typing"`
}

type ConnectionEstablished struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
	User   string `json:"user"`
}

type NotificationConnectionEstablished struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

type ChatMessageEvent struct {
	Type    string     `json:"type"`
	Message MessageDTO `json:"message"`
}

type TypingEvent struct {
	Type     string `json:"type"`
	User     string `json:"user"`
	IsTyping bool   `json:"is_typing"`
}

type MessagesReadEvent struct {
	Type      string `json:"type"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
}

type ChatNotificationEvent struct {
	Type         string          `json:"type"`
	Notification NotificationDTO `json:"notification"`
}
