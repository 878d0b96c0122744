package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/Muadeel56/localconnect-plus/cons"
	"github.com/Muadeel56/localconnect-plus/models"
	"github.com/Muadeel56/localconnect-plus/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemberService 房间成员关系：加入/退出/角色/已读游标
type MemberService struct {
	*Service
	rooms        *repository.RoomDAO
	participants *repository.ParticipantDAO
	messages     *repository.MessageDAO
	users        *repository.UserDAO
}

func NewMemberService(s *Service) *MemberService {
	return &MemberService{
		Service:      s,
		rooms:        repository.NewRoomDAO(s.DB),
		participants: repository.NewParticipantDAO(s.DB),
		messages:     repository.NewMessageDAO(s.DB),
		users:        repository.NewUserDAO(s.DB),
	}
}

// GetActiveMembership 网关和每帧发送前的成员校验
func (s *MemberService) GetActiveMembership(roomID uuid.UUID, userID uint64) (*models.Participant, error) {
	p, err := s.participants.FindActive(roomID, userID)
	if err != nil {
		return nil, notFoundOr(err, "Not a participant")
	}
	return p, nil
}

// Join 加入房间；退出过的成员复用原来的行
func (s *MemberService) Join(roomID uuid.UUID, userID uint64, role string) (*models.Participant, error) {
	if role == "" {
		role = cons.RoleMember
	}
	if !cons.ValidRole(role) {
		return nil, newErr(ErrValidation, "Invalid role")
	}

	tx := s.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	if _, err := s.rooms.WithDB(tx).FindActiveByID(roomID); err != nil {
		return nil, notFoundOr(err, "Room not found")
	}

	now := s.now()
	pDAO := s.participants.WithDB(tx)
	p, err := pDAO.Find(roomID, userID)
	switch {
	case err == nil && p.IsActive:
		return nil, newErr(ErrConflict, "Already a participant")
	case err == nil:
		if err := pDAO.Reactivate(p.ID, role, now); err != nil {
			return nil, err
		}
		p.IsActive, p.Role, p.JoinedAt = true, role, now
	case errors.Is(err, gorm.ErrRecordNotFound):
		p = &models.Participant{RoomID: roomID, UserID: userID, Role: role, JoinedAt: now, IsActive: true}
		if err := pDAO.Create(p); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, newErr(ErrConflict, "Already a participant")
			}
			return nil, err
		}
	default:
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return p, nil
}

// Leave 退出房间（只置 is_active=false）
func (s *MemberService) Leave(roomID uuid.UUID, userID uint64) error {
	n, err := s.participants.Deactivate(roomID, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return newErr(ErrValidation, "Not a participant")
	}
	return nil
}

// SetRole 只有同房间的活跃管理员可以修改角色
func (s *MemberService) SetRole(actor Identity, roomID uuid.UUID, targetUserID uint64, role string) error {
	if !cons.ValidRole(role) {
		return newErr(ErrValidation, "Invalid role")
	}
	actorRow, err := s.participants.FindActive(roomID, actor.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if !CanModerate(actor, actorRow, roomID, ActionSetRole) {
		return newErr(ErrForbidden, "Only room admins can update roles")
	}
	n, err := s.participants.UpdateRole(roomID, targetUserID, role)
	if err != nil {
		return err
	}
	if n == 0 {
		return newErr(ErrNotFound, "Participant not found")
	}
	return nil
}

// SetRoleByParticipantID REST 入口按成员行 ID 修改
func (s *MemberService) SetRoleByParticipantID(actor Identity, participantID uint64, role string) (*models.Participant, error) {
	p, err := s.participants.FindByID(participantID)
	if err != nil {
		return nil, notFoundOr(err, "Participant not found")
	}
	if !p.IsActive {
		return nil, newErr(ErrNotFound, "Participant not found")
	}
	if err := s.SetRole(actor, p.RoomID, p.UserID, role); err != nil {
		return nil, err
	}
	p.Role = role
	return p, nil
}

// AddParticipant 管理员拉人
func (s *MemberService) AddParticipant(actor Identity, roomID uuid.UUID, userID uint64) (*models.Participant, error) {
	actorRow, err := s.participants.FindActive(roomID, actor.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if !CanModerate(actor, actorRow, roomID, ActionAddParticipant) {
		return nil, newErr(ErrForbidden, "Only room admins can add participants")
	}
	u, err := s.users.FindByID(userID)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	if !u.IsActive {
		return nil, newErr(ErrNotFound, "User not found")
	}
	p, err := s.Join(roomID, userID, cons.RoleMember)
	if err != nil {
		var e *Error
		if errors.As(err, &e) && errors.Is(e.Kind, ErrConflict) {
			return nil, newErr(ErrConflict, "User is already a participant")
		}
		return nil, err
	}
	p.User = *u
	return p, nil
}

// MarkRead 写入已读游标，最后一次写入生效
func (s *MemberService) MarkRead(roomID uuid.UUID, userID uint64, ts time.Time) error {
	n, err := s.participants.UpdateLastRead(roomID, userID, ts)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if n == 0 {
		return newErr(ErrNotFound, "Not a participant")
	}
	return nil
}

// UnreadCount last_read_at 之后的未删除消息数
func (s *MemberService) UnreadCount(roomID uuid.UUID, userID uint64) (int64, error) {
	p, err := s.participants.Find(roomID, userID)
	if err != nil {
		return 0, notFoundOr(err, "Not a participant")
	}
	return s.messages.CountUnread(roomID, p.LastReadAt)
}

// ListParticipants 房间活跃成员，调用者必须是成员
func (s *MemberService) ListParticipants(roomID uuid.UUID, viewerID uint64) ([]models.Participant, error) {
	if _, err := s.GetActiveMembership(roomID, viewerID); err != nil {
		return nil, err
	}
	return s.participants.ListActive(roomID)
}
