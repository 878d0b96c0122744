package models

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Muadeel56/localconnect-plus/cons"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// TestMessageBeforeCreate 测试 Message.BeforeCreate 自动生成 UUID
func TestMessageBeforeCreate(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New failed: %v", err)
	}
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("gorm.Open failed: %v", err)
	}

	roomID := uuid.New()

	t.Run("AutoGenerateUUID", func(t *testing.T) {
		msg := &Message{
			RoomID:   roomID,
			SenderID: 100,
			Type:     cons.MessageTypeText,
			State:    MessageState{Content: "Test message"},
		}

		mock.ExpectExec("INSERT INTO `chat_message`").
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := db.Create(msg).Error; err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if msg.ID == uuid.Nil {
			t.Fatal("ID should be auto-generated")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unfulfilled expectations: %v", err)
		}
	})

	t.Run("PreserveExistingID", func(t *testing.T) {
		custom := uuid.New()
		msg := &Message{
			ID:       custom,
			RoomID:   roomID,
			SenderID: 100,
			Type:     cons.MessageTypeText,
			State:    MessageState{Content: "Test message"},
		}

		mock.ExpectExec("INSERT INTO `chat_message`").
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := db.Create(msg).Error; err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if msg.ID != custom {
			t.Errorf("ID should be preserved, expected %s got %s", custom, msg.ID)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unfulfilled expectations: %v", err)
		}
	})

	t.Run("RoomAutoGenerateUUID", func(t *testing.T) {
		room := &Room{Name: "help desk", Type: cons.RoomTypeCommunity, CreatorID: 1}

		mock.ExpectExec("INSERT INTO `chat_room`").
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := db.Create(room).Error; err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if room.ID == uuid.Nil {
			t.Fatal("room ID should be auto-generated")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unfulfilled expectations: %v", err)
		}
	})
}

func TestDisplayContent(t *testing.T) {
	size := int64(2048)
	cases := []struct {
		name string
		msg  Message
		want string
	}{
		{"text", Message{Type: cons.MessageTypeText, State: MessageState{Content: "hello"}}, "hello"},
		{"system", Message{Type: cons.MessageTypeSystem, State: MessageState{Content: "room created"}}, "room created"},
		{"image", Message{Type: cons.MessageTypeImage, Attachment: Attachment{FileName: "cat.png"}}, "[Image: cat.png]"},
		{"image unnamed", Message{Type: cons.MessageTypeImage}, "[Image: Unnamed]"},
		{"file", Message{Type: cons.MessageTypeFile, Attachment: Attachment{FileName: "cv.pdf", FileSize: &size}}, "[File: cv.pdf]"},
		{"file unnamed", Message{Type: cons.MessageTypeFile}, "[File: Unnamed]"},
		{"deleted text", Message{Type: cons.MessageTypeText, State: MessageState{Content: "secret", IsDeleted: true}}, DeletedPlaceholder},
		{"deleted image", Message{Type: cons.MessageTypeImage, Attachment: Attachment{FileName: "a.png"}, State: MessageState{IsDeleted: true}}, DeletedPlaceholder},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.msg.DisplayContent(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNotificationTarget(t *testing.T) {
	id := uuid.New()
	target := MessageTarget(id)
	got, ok := target.MessageID()
	if !ok || got != id {
		t.Fatalf("expected message target %s, got %s ok=%v", id, got, ok)
	}

	if _, ok := (NotificationTarget{}).MessageID(); ok {
		t.Fatal("empty target should not resolve to a message")
	}
}
