package message

import (
	"github.com/Muadeel56/localconnect-plus/models"
)

// RoomDTO 房间输出；列表接口会补充统计字段
type RoomDTO struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	RoomType         string      `json:"room_type"`
	Description      string      `json:"description"`
	CreatorID        string      `json:"created_by"`
	IsActive         bool        `json:"is_active"`
	ParticipantCount int64       `json:"participant_count"`
	LastMessage      *MessageDTO `json:"last_message"`
	UnreadCount      int64       `json:"unread_count"`
	CreatedAt        string      `json:"created_at"`
	UpdatedAt        string      `json:"updated_at"`
}

// ParticipantDTO 房间成员
type ParticipantDTO struct {
	ID         uint64    `json:"id"`
	RoomID     string    `json:"room_id"`
	User       SenderDTO `json:"user"`
	Role       string    `json:"role"`
	JoinedAt   string    `json:"joined_at"`
	LastReadAt *string   `json:"last_read_at"`
	IsActive   bool      `json:"is_active"`
}

func NewRoomDTO(r *models.Room) RoomDTO {
	return RoomDTO{
		ID:          r.ID.String(),
		Name:        r.Name,
		RoomType:    r.Type,
		Description: r.Description,
		CreatorID:   formatUint(r.CreatorID),
		IsActive:    r.IsActive,
		CreatedAt:   FormatTime(r.CreatedAt),
		UpdatedAt:   FormatTime(r.UpdatedAt),
	}
}

func NewParticipantDTO(p *models.Participant) ParticipantDTO {
	u := p.User
	if u.ID == 0 {
		u.ID = p.UserID
	}
	return ParticipantDTO{
		ID:         p.ID,
		RoomID:     p.RoomID.String(),
		User:       NewSenderDTO(u),
		Role:       p.Role,
		JoinedAt:   FormatTime(p.JoinedAt),
		LastReadAt: formatTimePtr(p.LastReadAt),
		IsActive:   p.IsActive,
	}
}
