package service

import (
	"errors"
	"strings"

	"github.com/Muadeel56/localconnect-plus/cons"
	"github.com/Muadeel56/localconnect-plus/message"
	"github.com/Muadeel56/localconnect-plus/models"
	"github.com/Muadeel56/localconnect-plus/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxRoomNameLen = 100

// RoomService 房间创建/查询/停用
type RoomService struct {
	*Service
	members      *MemberService
	rooms        *repository.RoomDAO
	participants *repository.ParticipantDAO
	messages     *repository.MessageDAO
}

func NewRoomService(s *Service, members *MemberService) *RoomService {
	return &RoomService{
		Service:      s,
		members:      members,
		rooms:        repository.NewRoomDAO(s.DB),
		participants: repository.NewParticipantDAO(s.DB),
		messages:     repository.NewMessageDAO(s.DB),
	}
}

// CreateRoomReq 创建房间参数
type CreateRoomReq struct {
	Name        string `json:"name" binding:"required"`
	RoomType    string `json:"room_type"`
	Description string `json:"description"`
}

// CreateRoom 创建者自动成为房间管理员
func (s *RoomService) CreateRoom(creator Identity, req CreateRoomReq) (*models.Room, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newErr(ErrValidation, "Room name is required")
	}
	if len([]rune(name)) > maxRoomNameLen {
		return nil, newErr(ErrValidation, "Room name is too long")
	}
	roomType := req.RoomType
	if roomType == "" {
		roomType = cons.RoomTypeCommunity
	}
	if !cons.ValidRoomType(roomType) {
		return nil, newErr(ErrValidation, "Invalid room type")
	}

	tx := s.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	now := s.now()
	room := &models.Room{
		Name:        name,
		Type:        roomType,
		Description: strings.TrimSpace(req.Description),
		CreatorID:   creator.UserID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.rooms.WithDB(tx).Create(room); err != nil {
		return nil, err
	}
	admin := &models.Participant{
		RoomID:   room.ID,
		UserID:   creator.UserID,
		Role:     cons.RoleAdmin,
		JoinedAt: now,
		IsActive: true,
	}
	if err := s.participants.WithDB(tx).Create(admin); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	s.logger().Info("room created", "room_id", room.ID, "creator_id", creator.UserID, "room_type", roomType)
	return room, nil
}

// GetRoom 私有房间只对活跃成员可见
func (s *RoomService) GetRoom(viewer Identity, roomID uuid.UUID) (*models.Room, error) {
	room, err := s.rooms.FindActiveByID(roomID)
	if err != nil {
		return nil, notFoundOr(err, "Room not found")
	}
	if room.Type == cons.RoomTypePrivate {
		if _, err := s.members.GetActiveMembership(roomID, viewer.UserID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, newErr(ErrNotFound, "Room not found")
			}
			return nil, err
		}
	}
	return room, nil
}

// JoinRoom 自助加入；私有房间只能由管理员拉人，退出过的成员可以重新加入
func (s *RoomService) JoinRoom(who Identity, roomID uuid.UUID) (*models.Participant, error) {
	room, err := s.rooms.FindActiveByID(roomID)
	if err != nil {
		return nil, notFoundOr(err, "Room not found")
	}
	if room.Type == cons.RoomTypePrivate {
		if _, err := s.participants.Find(roomID, who.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, newErr(ErrForbidden, "Private rooms require an invitation")
			}
			return nil, err
		}
	}
	return s.members.Join(roomID, who.UserID, cons.RoleMember)
}

// ListUserRooms 用户所在房间，附带成员数、最新消息、未读数
func (s *RoomService) ListUserRooms(userID uint64) ([]message.RoomDTO, error) {
	rooms, err := s.rooms.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	out := make([]message.RoomDTO, 0, len(rooms))
	for i := range rooms {
		dto, err := s.RoomSummary(&rooms[i], userID)
		if err != nil {
			return nil, err
		}
		out = append(out, dto)
	}
	return out, nil
}

// RoomSummary 单个房间的统计视图
func (s *RoomService) RoomSummary(room *models.Room, userID uint64) (message.RoomDTO, error) {
	dto := message.NewRoomDTO(room)

	n, err := s.participants.CountActive(room.ID)
	if err != nil {
		return dto, err
	}
	dto.ParticipantCount = n

	last, err := s.messages.LatestByRoom(room.ID)
	switch {
	case err == nil:
		m := message.NewMessageDTO(last)
		dto.LastMessage = &m
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return dto, err
	}

	unread, err := s.members.UnreadCount(room.ID, userID)
	switch {
	case err == nil:
		dto.UnreadCount = unread
	case !errors.Is(err, ErrNotFound):
		return dto, err
	}
	return dto, nil
}

// Deactivate 停用房间，之后的发送会因找不到房间被丢弃
func (s *RoomService) Deactivate(actor Identity, roomID uuid.UUID) error {
	if _, err := s.rooms.FindActiveByID(roomID); err != nil {
		return notFoundOr(err, "Room not found")
	}
	actorRow, err := s.participants.FindActive(roomID, actor.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if !CanModerate(actor, actorRow, roomID, ActionDeactivateRoom) {
		return newErr(ErrForbidden, "Not authorized")
	}
	if err := s.rooms.Deactivate(roomID); err != nil {
		return err
	}
	s.logger().Info("room deactivated", "room_id", roomID, "actor_id", actor.UserID)
	return nil
}
