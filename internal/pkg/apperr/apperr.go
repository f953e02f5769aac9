package apperr

import (
	"errors"
	"fmt"
)

// 错误分类，调用方通过 errors.Is 判断
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrNoMatch    = errors.New("nothing changed")
	ErrStorage    = errors.New("storage error")
)

var kinds = []error{ErrValidation, ErrNotFound, ErrConflict, ErrNoMatch, ErrStorage}

// Error 带分类的业务错误
type Error struct {
	kind error
	msg  string
}

// New 创建属于 kind 分类的错误
func New(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Is(target error) bool {
	return target == e.kind
}

// Kind 返回错误所属分类
func (e *Error) Kind() error {
	return e.kind
}

// StorageError 基础设施错误，保留底层驱动错误
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("storage: %v", e.Err)
	}
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// Storage 包装为 StorageError，nil 原样返回
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// KindOf 返回 err 的分类，未分类时返回 nil
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// IsClassified 判断错误是否已分类
func IsClassified(err error) bool {
	return KindOf(err) != nil
}
