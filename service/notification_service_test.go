package service

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var notificationCols = []string{"id", "recipient_id", "room_id", "target_kind", "target_id", "notification_type", "content", "is_read", "created_at"}

func TestMentions(t *testing.T) {
	cases := []struct {
		content, user string
		want          bool
	}{
		{"hi @bob", "bob", true},
		{"@bob, can you help?", "bob", true},
		{"hi @bobby", "bob", false},
		{"hi @bobby and @bob", "bob", true},
		{"mail bob@example.com", "bob", false},
		{"no tag here", "bob", false},
		{"@", "", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, mentions(tc.content, tc.user), tc.content)
	}
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short"))
	long := strings.Repeat("é", previewMaxRunes+5)
	got := preview(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, previewMaxRunes+3, len([]rune(got)))
}

func TestNotificationService_List_ClampsLimit(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	ns := NewNotificationService(newTestService(gormDB, nil))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `chat_notification` WHERE recipient_id = ? AND id < ? ORDER BY id DESC LIMIT ?")).
		WithArgs(uint64(7), uint64(100), maxNotificationLimit).
		WillReturnRows(sqlmock.NewRows(notificationCols))

	if _, err := ns.List(7, 100, 10000, false); err != nil {
		t.Fatalf("List: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNotificationService_MarkRead(t *testing.T) {
	t.Run("unread is updated", func(t *testing.T) {
		gormDB, mock, sqlDB := newMockDB(t)
		defer sqlDB.Close()
		ns := NewNotificationService(newTestService(gormDB, nil))

		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `chat_notification` WHERE id = ? AND recipient_id = ?")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "recipient_id", "is_read"}).AddRow(uint64(3), uint64(7), false))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE `chat_notification` SET `is_read`=?")).
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := ns.MarkRead(7, 3); err != nil {
			t.Fatalf("MarkRead: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("sql expectations: %v", err)
		}
	})

	t.Run("already read is a no-op", func(t *testing.T) {
		gormDB, mock, sqlDB := newMockDB(t)
		defer sqlDB.Close()
		ns := NewNotificationService(newTestService(gormDB, nil))

		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `chat_notification`")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "recipient_id", "is_read"}).AddRow(uint64(3), uint64(7), true))

		if err := ns.MarkRead(7, 3); err != nil {
			t.Fatalf("MarkRead: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("sql expectations: %v", err)
		}
	})

	t.Run("someone else's notification", func(t *testing.T) {
		gormDB, mock, sqlDB := newMockDB(t)
		defer sqlDB.Close()
		ns := NewNotificationService(newTestService(gormDB, nil))

		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `chat_notification`")).
			WillReturnRows(sqlmock.NewRows(notificationCols))

		if err := ns.MarkRead(8, 3); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
