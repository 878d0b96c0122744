package models

import (
	"github.com/google/uuid"
)

// TargetKind 通知关联对象的类型
type TargetKind string

const (
	TargetNone    TargetKind = ""
	TargetMessage TargetKind = "message"
)

// NotificationTarget 通知关联的对象 {kind, id}。
// 目前只有消息一种，不做通用的多态关联。
type NotificationTarget struct {
	Kind TargetKind `gorm:"size:20"`
	ID   *uuid.UUID `gorm:"type:char(36);index"`
}

// MessageTarget 指向某条消息
func MessageTarget(id uuid.UUID) NotificationTarget {
	return NotificationTarget{Kind: TargetMessage, ID: &id}
}

// MessageID 返回关联的消息 ID
func (t NotificationTarget) MessageID() (uuid.UUID, bool) {
	if t.Kind != TargetMessage || t.ID == nil {
		return uuid.Nil, false
	}
	return *t.ID, true
}
