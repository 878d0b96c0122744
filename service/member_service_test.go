package service

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Muadeel56/localconnect-plus/cons"
	"github.com/google/uuid"
)

var (
	roomCols        = []string{"id", "name", "room_type", "creator_id", "is_active", "created_at", "updated_at"}
	participantCols = []string{"id", "room_id", "user_id", "role", "joined_at", "last_read_at", "is_active"}
)

func roomRow(id uuid.UUID, roomType string) *sqlmock.Rows {
	return sqlmock.NewRows(roomCols).AddRow(id.String(), "help desk", roomType, uint64(1), true, fixedNow, fixedNow)
}

func participantRow(id uint64, roomID uuid.UUID, userID uint64, role string, active bool, lastRead *time.Time) *sqlmock.Rows {
	var lr any
	if lastRead != nil {
		lr = *lastRead
	}
	return sqlmock.NewRows(participantCols).AddRow(id, roomID.String(), userID, role, fixedNow, lr, active)
}

func TestMemberService_Join_CreatesMembership(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	ms := NewMemberService(newTestService(gormDB, nil))
	roomID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `chat_room` WHERE id = ? AND is_active = ?")).
		WillReturnRows(roomRow(roomID, cons.RoomTypeCommunity))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `chat_participant` WHERE room_id = ? AND user_id = ?")).
		WillReturnRows(sqlmock.NewRows(participantCols))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `chat_participant`")).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	p, err := ms.Join(roomID, 7, "")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if p.ID != 11 || p.Role != cons.RoleMember || !p.IsActive || !p.JoinedAt.Equal(fixedNow) {
		t.Fatalf("unexpected participant %#v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestMemberService_Join_AlreadyActive(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	ms := NewMemberService(newTestService(gormDB, nil))
	roomID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `chat_room`")).
		WillReturnRows(roomRow(roomID, cons.RoomTypeCommunity))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `chat_participant`")).
		WillReturnRows(participantRow(3, roomID, 7, cons.RoleMember, true, nil))
	mock.ExpectRollback()

	_, err := ms.Join(roomID, 7, cons.RoleMember)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err.Error() != "Already a participant" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestMemberService_Join_ReactivatesAfterLeave(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	ms := NewMemberService(newTestService(gormDB, nil))
	roomID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `chat_room`")).
		WillReturnRows(roomRow(roomID, cons.RoomTypeCommunity))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `chat_participant`")).
		WillReturnRows(participantRow(3, roomID, 7, cons.RoleModerator, false, nil))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `chat_participant` SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, err := ms.Join(roomID, 7, cons.RoleMember)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if p.ID != 3 || !p.IsActive || p.Role != cons.RoleMember {
		t.Fatalf("expected reactivated row 3 as member, got %#v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestMemberService_Join_RoomMissing(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	ms := NewMemberService(newTestService(gormDB, nil))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `chat_room`")).
		WillReturnRows(sqlmock.NewRows(roomCols))
	mock.ExpectRollback()

	if _, err := ms.Join(uuid.New(), 7, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemberService_Leave(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	ms := NewMemberService(newTestService(gormDB, nil))
	roomID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `chat_participant` SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `chat_participant` SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := ms.Leave(roomID, 7); err != nil {
		t.Fatalf("first Leave: %v", err)
	}
	err := ms.Leave(roomID, 7)
	if !errors.Is(err, ErrValidation) || err.Error() != "Not a participant" {
		t.Fatalf("second Leave: expected Not a participant, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestMemberService_SetRole(t *testing.T) {
	roomID := uuid.New()
	actor := Identity{UserID: 1, Username: "admin", Role: cons.UserRoleUser}

	t.Run("member forbidden", func(t *testing.T) {
		gormDB, mock, sqlDB := newMockDB(t)
		defer sqlDB.Close()
		ms := NewMemberService(newTestService(gormDB, nil))

		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `chat_participant` WHERE room_id = ? AND user_id = ? AND is_active = ?")).
			WillReturnRows(participantRow(1, roomID, 1, cons.RoleMember, true, nil))

		if err := ms.SetRole(actor, roomID, 9, cons.RoleModerator); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("sql expectations: %v", err)
		}
	})

	t.Run("admin updates", func(t *testing.T) {
		gormDB, mock, sqlDB := newMockDB(t)
		defer sqlDB.Close()
		ms := NewMemberService(newTestService(gormDB, nil))

		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `chat_participant`")).
			WillReturnRows(participantRow(1, roomID, 1, cons.RoleAdmin, true, nil))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE `chat_participant` SET")).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := ms.SetRole(actor, roomID, 9, cons.RoleModerator); err != nil {
			t.Fatalf("SetRole: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("sql expectations: %v", err)
		}
	})

	t.Run("invalid role", func(t *testing.T) {
		ms := NewMemberService(newTestService(nil, nil))
		if err := ms.SetRole(actor, roomID, 9, "owner"); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}

func TestMemberService_MarkRead(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	ms := NewMemberService(newTestService(gormDB, nil))
	roomID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `chat_participant` SET `last_read_at`=?")).
		WithArgs(fixedNow, sqlmock.AnyArg(), roomID.String(), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := ms.MarkRead(roomID, 7, fixedNow); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestMemberService_UnreadCount(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	ms := NewMemberService(newTestService(gormDB, nil))
	roomID := uuid.New()
	lastRead := fixedNow.Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `chat_participant` WHERE room_id = ? AND user_id = ?")).
		WillReturnRows(participantRow(3, roomID, 7, cons.RoleMember, true, &lastRead))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `chat_message` WHERE .*created_at > \\?").
		WithArgs(roomID.String(), false, lastRead).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := ms.UnreadCount(roomID, 7)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
