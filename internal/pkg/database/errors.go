package database

import (
	"Fieldclip/internal/pkg/apperr"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type violation int

const (
	violationNone violation = iota
	violationUnique
	violationCheck
	violationForeignKey
)

// classifyViolation 识别三种驱动的约束冲突
func classifyViolation(err error) violation {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return violationUnique
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return violationCheck
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return violationForeignKey
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return violationUnique
		case 3819:
			return violationCheck
		case 1451, 1452:
			return violationForeignKey
		}
		return violationNone
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return violationUnique
		case "23514":
			return violationCheck
		case "23503":
			return violationForeignKey
		}
		return violationNone
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return violationUnique
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return violationCheck
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return violationForeignKey
		}
	}
	return violationNone
}

// IsUniqueViolation 唯一约束冲突
func IsUniqueViolation(err error) bool {
	return classifyViolation(err) == violationUnique
}

// Classify 将存储层错误转换为分类错误，已分类的错误原样返回
func Classify(op string, err error) error {
	if err == nil || apperr.IsClassified(err) {
		return err
	}
	switch classifyViolation(err) {
	case violationUnique:
		return apperr.New(apperr.ErrConflict, op+": duplicate value")
	case violationCheck:
		return apperr.New(apperr.ErrValidation, op+": value violates constraint")
	case violationForeignKey:
		return apperr.New(apperr.ErrNotFound, op+": referenced row does not exist")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.ErrNotFound, op+": record not found")
	}
	return apperr.Storage(op, err)
}
