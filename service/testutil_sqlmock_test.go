package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Muadeel56/localconnect-plus/broadcast"
	"github.com/Muadeel56/localconnect-plus/logger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// newMockDB 用 go-sqlmock 创建一个可被 GORM 使用的 *gorm.DB。
// mysql dialector 只用来固定 SQL 风格（反引号 + ? 占位符），不会连接真实数据库。
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

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(db *gorm.DB, pub broadcast.Publisher) *Service {
	return &Service{
		DB:     db,
		Log:    logger.Nop(),
		Fabric: pub,
		Clock:  func() time.Time { return fixedNow },
	}
}

type published struct {
	group   broadcast.Group
	payload []byte
}

// recordingPublisher 记录所有发布，替代 Hub
type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (r *recordingPublisher) Publish(_ context.Context, g broadcast.Group, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, published{group: g, payload: payload})
	return nil
}

func (r *recordingPublisher) all() []published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]published(nil), r.msgs...)
}
