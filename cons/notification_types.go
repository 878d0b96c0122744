package cons

// 聊天通知类型（notification_type）
// reaction / system 由其他服务写入，聊天核心只产生 message 和 mention
const (
	NotificationTypeMessage  = "message"  // 新消息
	NotificationTypeMention  = "mention"  // 被@
	NotificationTypeReaction = "reaction" // 表情回应
	NotificationTypeSystem   = "system"   // 系统通知
)
