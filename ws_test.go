package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Muadeel56/localconnect-plus/message"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var participantCols = []string{"id", "room_id", "user_id", "role", "joined_at", "last_read_at", "is_active"}

func wsURL(srvURL, path, token string) string {
	u := "ws" + strings.TrimPrefix(srvURL, "http") + path
	if token != "" {
		u += "?token=" + token
	}
	return u
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}
	return conn
}

// readJSON 读一帧文本并解析
func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
}

// expectClose 握手成功后第一帧就是关闭帧
func expectClose(t *testing.T, conn *websocket.Conn, code int) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("expected close %d, got data frame %s", code, data)
	}
	var ce *websocket.CloseError
	if !errors.As(err, &ce) {
		t.Fatalf("expected close error, got %v", err)
	}
	if ce.Code != code {
		t.Fatalf("expected close code %d, got %d (%s)", code, ce.Code, ce.Text)
	}
}

func TestRoomWS_ExpiredTokenCloses4001(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	_, srv := newTestServer(t, db)

	token := signToken(t, 7, -time.Minute)
	conn := dial(t, wsURL(srv.URL, "/ws/chat/"+uuid.NewString()+"/", token))
	defer conn.Close()

	expectClose(t, conn, message.CloseUnauthenticated)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no queries expected: %v", err)
	}
}

func TestRoomWS_MissingTokenCloses4001(t *testing.T) {
	db, _, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	_, srv := newTestServer(t, db)

	conn := dial(t, wsURL(srv.URL, "/ws/chat/"+uuid.NewString(), ""))
	defer conn.Close()
	expectClose(t, conn, message.CloseUnauthenticated)
}

func TestRoomWS_NonMemberCloses4003(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	_, srv := newTestServer(t, db)
	roomID := uuid.New()

	expectUser(mock, 7, "ana")
	mock.ExpectQuery("SELECT \\* FROM `chat_participant`").
		WillReturnRows(sqlmock.NewRows(participantCols))

	conn := dial(t, wsURL(srv.URL, "/ws/chat/"+roomID.String(), signToken(t, 7, time.Hour)))
	defer conn.Close()

	expectClose(t, conn, message.CloseNotParticipant)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRoomWS_InvalidRoomIDCloses4003(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	_, srv := newTestServer(t, db)

	expectUser(mock, 7, "ana")
	conn := dial(t, wsURL(srv.URL, "/ws/chat/not-a-uuid", signToken(t, 7, time.Hour)))
	defer conn.Close()
	expectClose(t, conn, message.CloseNotParticipant)
}

func TestRoomWS_DatabaseErrorCloses1011(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	_, srv := newTestServer(t, db)

	expectUser(mock, 7, "ana")
	mock.ExpectQuery("SELECT \\* FROM `chat_participant`").WillReturnError(errors.New("connection reset"))

	conn := dial(t, wsURL(srv.URL, "/ws/chat/"+uuid.NewString(), signToken(t, 7, time.Hour)))
	defer conn.Close()
	expectClose(t, conn, websocket.CloseInternalServerErr)
}

// connectMember 完成一次房间握手并读掉欢迎帧
func connectMember(t *testing.T, mock sqlmock.Sqlmock, srvURL string, roomID uuid.UUID, userID uint64, name string) *websocket.Conn {
	t.Helper()
	expectUser(mock, userID, name)
	mock.ExpectQuery("SELECT \\* FROM `chat_participant`").
		WillReturnRows(sqlmock.NewRows(participantCols).AddRow(userID, roomID.String(), userID, "member", time.Now(), nil, true))

	conn := dial(t, wsURL(srvURL, "/ws/chat/"+roomID.String(), signToken(t, userID, time.Hour)))
	var hello message.ConnectionEstablished
	readJSON(t, conn, &hello)
	if hello.Type != message.TypeConnectionEstablished || hello.RoomID != roomID.String() || hello.User != name {
		t.Fatalf("unexpected hello %#v", hello)
	}
	return conn
}

func TestRoomWS_TypingReachesEveryRoomMember(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	engine, srv := newTestServer(t, db)
	roomID := uuid.New()

	ana := connectMember(t, mock, srv.URL, roomID, 7, "ana")
	defer ana.Close()
	bob := connectMember(t, mock, srv.URL, roomID, 8, "bob")
	defer bob.Close()

	// 未知类型直接丢弃，连接保持
	if err := ana.WriteJSON(map[string]any{"type": "reaction", "emoji": "+1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ana.WriteJSON(message.TypingReq{Type: message.TypeTyping, IsTyping: true}); err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, conn := range []*websocket.Conn{bob, ana} {
		var ev message.TypingEvent
		readJSON(t, conn, &ev)
		if ev.Type != message.TypeTyping || ev.User != "ana" || !ev.IsTyping {
			t.Fatalf("unexpected typing event %#v", ev)
		}
	}

	online, err := engine.PresenceService.Online(context.Background(), roomID)
	if err != nil {
		t.Fatalf("Online: %v", err)
	}
	if len(online) != 2 || online[0] != 7 || online[1] != 8 {
		t.Fatalf("expected both users online, got %v", online)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNotificationWS_Hello(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	_, srv := newTestServer(t, db)

	expectUser(mock, 9, "cleo")
	conn := dial(t, wsURL(srv.URL, "/ws/notifications/", signToken(t, 9, time.Hour)))
	defer conn.Close()

	var hello message.NotificationConnectionEstablished
	readJSON(t, conn, &hello)
	if hello.Type != message.TypeNotificationConnectionEstablished || hello.UserID != "9" {
		t.Fatalf("unexpected hello %#v", hello)
	}
}

func TestNotificationWS_Unauthenticated(t *testing.T) {
	db, _, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	_, srv := newTestServer(t, db)

	conn := dial(t, wsURL(srv.URL, "/ws/notifications", "garbage"))
	defer conn.Close()
	expectClose(t, conn, message.CloseUnauthenticated)
}

var roomCols = []string{"id", "name", "room_type", "creator_id", "is_active", "created_at", "updated_at"}

func TestRoomWS_ChatMessageReachesOtherMember(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	_, srv := newTestServer(t, db)
	roomID := uuid.New()

	ana := connectMember(t, mock, srv.URL, roomID, 7, "ana")
	defer ana.Close()
	bob := connectMember(t, mock, srv.URL, roomID, 8, "bob")
	defer bob.Close()

	expectUser(mock, 8, "bob")
	bobInbox := dial(t, wsURL(srv.URL, "/ws/notifications", signToken(t, 8, time.Hour)))
	defer bobInbox.Close()
	var hello message.NotificationConnectionEstablished
	readJSON(t, bobInbox, &hello)

	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `chat_participant`").
		WillReturnRows(sqlmock.NewRows(participantCols).AddRow(7, roomID.String(), 7, "member", now, nil, true))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `chat_room`").
		WillReturnRows(sqlmock.NewRows(roomCols).AddRow(roomID.String(), "general", "community", 7, true, now, now))
	mock.ExpectExec("INSERT INTO `chat_message`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `chat_room`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT \\* FROM `chat_participant`").
		WillReturnRows(sqlmock.NewRows(participantCols).
			AddRow(7, roomID.String(), 7, "member", now, nil, true).
			AddRow(8, roomID.String(), 8, "member", now, nil, true))
	mock.ExpectQuery("SELECT \\* FROM `chat_user`").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(7, "ana", "", "user", true).
			AddRow(8, "bob", "", "user", true))
	mock.ExpectExec("INSERT INTO `chat_notification`").WillReturnResult(sqlmock.NewResult(1, 1))

	if err := ana.WriteJSON(message.ChatMessageReq{Type: message.TypeChatMessage, Message: "hi @bob"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, conn := range []*websocket.Conn{bob, ana} {
		var ev message.ChatMessageEvent
		readJSON(t, conn, &ev)
		if ev.Type != message.TypeChatMessage || ev.Message.Content != "hi @bob" || ev.Message.Sender.Username != "ana" {
			t.Fatalf("unexpected chat event %#v", ev)
		}
		if _, err := uuid.Parse(ev.Message.ID); err != nil {
			t.Fatalf("message id %q: %v", ev.Message.ID, err)
		}
	}

	var n message.ChatNotificationEvent
	readJSON(t, bobInbox, &n)
	if n.Type != message.TypeChatNotification || n.Notification.NotificationType != "mention" {
		t.Fatalf("unexpected notification %#v", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRoomWS_ReadMessagesBroadcastsTimestamp(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	_, srv := newTestServer(t, db)
	roomID := uuid.New()

	ana := connectMember(t, mock, srv.URL, roomID, 7, "ana")
	defer ana.Close()
	bob := connectMember(t, mock, srv.URL, roomID, 8, "bob")
	defer bob.Close()

	mock.ExpectQuery("SELECT \\* FROM `chat_participant`").
		WillReturnRows(sqlmock.NewRows(participantCols).AddRow(8, roomID.String(), 8, "member", time.Now(), nil, true))
	mock.ExpectExec("UPDATE `chat_participant` SET").WillReturnResult(sqlmock.NewResult(0, 1))

	before := time.Now().Add(-time.Second)
	if err := bob.WriteJSON(map[string]string{"type": message.TypeReadMessages}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var ev message.MessagesReadEvent
	readJSON(t, ana, &ev)
	if ev.Type != message.TypeMessagesRead || ev.User != "bob" {
		t.Fatalf("unexpected read event %#v", ev)
	}
	ts, err := time.Parse(time.RFC3339Nano, ev.Timestamp)
	if err != nil {
		t.Fatalf("timestamp %q: %v", ev.Timestamp, err)
	}
	if ts.Before(before) {
		t.Fatalf("timestamp %s is stale", ts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRoomWS_BadFramesKeepConnectionOpen(t *testing.T) {
	db, mock, sqlDB := newMockDB(t)
	defer sqlDB.Close()
	_, srv := newTestServer(t, db)
	roomID := uuid.New()

	ana := connectMember(t, mock, srv.URL, roomID, 7, "ana")
	defer ana.Close()

	frames := []string{
		`not json{`,
		`{"type":"reaction","emoji":"+1"}`,
		`{"type":"chat_message","message":"hi","reply_to":"not-a-uuid"}`,
		`{"type":"typing","is_typing":"yes"}`,
	}
	for _, f := range frames {
		if err := ana.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}
	if err := ana.WriteJSON(message.TypingReq{Type: message.TypeTyping, IsTyping: true}); err != nil {
		t.Fatalf("write: %v", err)
	}

	// 前面的坏帧都被丢弃，第一帧回包就是 typing
	var ev message.TypingEvent
	readJSON(t, ana, &ev)
	if ev.Type != message.TypeTyping || ev.User != "ana" || !ev.IsTyping {
		t.Fatalf("unexpected event %#v", ev)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
