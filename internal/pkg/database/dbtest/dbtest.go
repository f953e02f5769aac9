// Package dbtest 为测试提供已建表的 SQLite 数据库
package dbtest

import (
	"Fieldclip/internal/api/config"
	"Fieldclip/internal/pkg/database"
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"
)

// Open 在临时目录创建 SQLite 数据库并完成建表
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.NewGormDB(&config.DBConfig{
		DSN:             filepath.Join(t.TempDir(), "clips.db"),
		SlowThresholdMs: 1000,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Provision(context.Background(), db); err != nil {
		t.Fatalf("provision schema: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
