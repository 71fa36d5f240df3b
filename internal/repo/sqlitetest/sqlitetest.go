// Package sqlitetest 为测试提供已迁移的 SQLite。
package sqlitetest

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"appointly/internal/core/database"
	"appointly/internal/repo"
)

// Open 每个测试独立一个内存库；内存库只能单连接，事务彼此串行
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()[:8]
	return open(t, database.Opts{
		Driver:       "sqlite",
		DSN:          "file:" + name + "?mode=memory&cache=shared&_foreign_keys=on",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
}

// OpenFile 临时目录下的文件库，多连接并发；写锁冲突靠 busy_timeout 等待。
// 并发相关的测试用它，保证多个事务真的同时在跑
func OpenFile(t testing.TB, conns int) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "appointly.db")
	return open(t, database.Opts{
		Driver:       "sqlite",
		DSN:          "file:" + path + "?_busy_timeout=10000&_journal_mode=WAL&_foreign_keys=on&_txlock=immediate",
		MaxOpenConns: conns,
		MaxIdleConns: conns,
		LogLevel:     "silent",
	})
}

func open(t testing.TB, o database.Opts) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(o)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
