package chat

import (
	"database/sql"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Muadeel56/localconnect-plus/logger"
	"github.com/Muadeel56/localconnect-plus/service"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

var userCols = []string{"id", "username", "avatar", "role", "is_active"}

func init() {
	gin.SetMode(gin.TestMode)
}

// newMockDB 用 go-sqlmock 创建一个可被 GORM 使用的 *gorm.DB（mysql 方言）
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	sqldb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqldb, SkipInitializeWithVersion: true}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		_ = sqldb.Close()
		t.Fatalf("gorm.Open: %v", err)
	}
	return db, mock, sqldb
}

// newTestServer 单节点引擎 + 完整路由
func newTestServer(t *testing.T, db *gorm.DB) (*ChatEngine, *httptest.Server) {
	t.Helper()

	engine, err := NewEngine(WithDB(db), WithJWTSecret(testSecret), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	r := gin.New()
	engine.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		engine.WsServer.Close()
		srv.Close()
	})
	return engine, srv
}

func signToken(t *testing.T, userID uint64, ttl time.Duration) string {
	t.Helper()

	claims := service.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func expectUser(mock sqlmock.Sqlmock, id uint64, name string) {
	mock.ExpectQuery("SELECT \\* FROM `chat_user`").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(id, name, "", "user", true))
}
