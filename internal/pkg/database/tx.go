package database

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager 事务执行器
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 在同一事务中执行 fn，fn 返回错误或 panic 时回滚
// 嵌套调用复用外层事务
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, nil, fn)
}

// ReadTransaction 只读事务，fn 内的多条查询读取同一快照
func (m *TxManager) ReadTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func (m *TxManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	if InTransaction(ctx) {
		return fn(ctx)
	}

	var tx *gorm.DB
	if opts != nil {
		tx = m.db.WithContext(ctx).Begin(opts)
	} else {
		tx = m.db.WithContext(ctx).Begin()
	}
	if tx.Error != nil {
		return Classify("begin transaction", tx.Error)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
		tx.Rollback()
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return Classify("transaction", err)
	}

	if err = tx.Commit().Error; err != nil {
		return Classify("commit transaction", err)
	}
	committed = true
	return nil
}

// Conn 返回 ctx 中的事务句柄，没有事务时返回 fallback
func Conn(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}

// InTransaction ctx 是否处于事务中
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}
