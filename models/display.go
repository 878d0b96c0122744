package models

import "github.com/Muadeel56/localconnect-plus/cons"

const (
	DeletedPlaceholder = "[Message deleted]"
	unnamedFile        = "Unnamed"
)

// DisplayContent 根据消息类型和状态计算展示内容，不落库
func DisplayContent(msgType string, att Attachment, st MessageState) string {
	if st.IsDeleted {
		return DeletedPlaceholder
	}
	name := att.FileName
	if name == "" {
		name = unnamedFile
	}
	switch msgType {
	case cons.MessageTypeImage:
		return "[Image: " + name + "]"
	case cons.MessageTypeFile:
		return "[File: " + name + "]"
	default:
		return st.Content
	}
}
