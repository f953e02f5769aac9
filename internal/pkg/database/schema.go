package database

import (
	"Fieldclip/internal/model"
	"context"
	"errors"
	"fmt"
	log "log/slog"

	"gorm.io/gorm"
)

// ErrSchemaUnsupported 存储不支持所需约束
var ErrSchemaUnsupported = errors.New("storage does not support required constraints")

// Models 需要建表的实体，父表在前
func Models() []any {
	return []any{&model.Clip{}, &model.ClipReview{}, &model.ClipMetrics{}}
}

// Provision 建表并校验约束，可重复执行
func Provision(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	missing, err := MissingConstraints(db)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrSchemaUnsupported, missing)
	}

	log.InfoContext(ctx, "Schema provisioned", "tables", len(Models()))
	return nil
}

// MissingConstraints 返回声明了但存储中不存在的约束名
func MissingConstraints(db *gorm.DB) ([]string, error) {
	migrator := db.Migrator()
	var missing []string

	for _, value := range Models() {
		names, err := declaredConstraints(db, value)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if !migrator.HasConstraint(value, name) {
				missing = append(missing, name)
			}
		}
	}
	return missing, nil
}

// declaredConstraints 收集模型上的 CHECK 与外键约束名
func declaredConstraints(db *gorm.DB, value any) ([]string, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(value); err != nil {
		return nil, fmt.Errorf("parse schema %T: %w", value, err)
	}

	names := make([]string, 0)
	for name := range stmt.Schema.ParseCheckConstraints() {
		names = append(names, name)
	}
	for _, rel := range stmt.Schema.Relationships.Relations {
		if constraint := rel.ParseConstraint(); constraint != nil && constraint.Schema == stmt.Schema {
			names = append(names, constraint.Name)
		}
	}
	return names, nil
}
