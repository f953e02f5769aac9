package service

import (
	"Fieldclip/internal/pkg/apperr"
	"errors"
)

const (
	BadRequest          = 400
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
)

var (
	ErrParamInvalid        = apperr.New(apperr.ErrValidation, "参数错误")
	ErrClipFieldsRequired  = apperr.New(apperr.ErrValidation, "设备序列号、上传者与路径不能为空")
	ErrDurationInvalid     = apperr.New(apperr.ErrValidation, "时长必须为正数")
	ErrStatusInvalid       = apperr.New(apperr.ErrValidation, "无效的切片状态")
	ErrClipIDsEmpty        = apperr.New(apperr.ErrValidation, "切片ID列表不能为空")
	ErrClipIDInvalid       = apperr.New(apperr.ErrValidation, "无效的切片ID")
	ErrReviewerRequired    = apperr.New(apperr.ErrValidation, "审核人不能为空")
	ErrPaginationInvalid   = apperr.New(apperr.ErrValidation, "分页参数超出范围")
	ErrSortInvalid         = apperr.New(apperr.ErrValidation, "不支持的排序方式")
	ErrNegativeDelta       = apperr.New(apperr.ErrValidation, "指标增量不能为负数")
	ErrClipNotFound        = apperr.New(apperr.ErrNotFound, "切片不存在")
	ErrDeviceNotFound      = apperr.New(apperr.ErrNotFound, "设备不存在")
	ErrUploaderNotFound    = apperr.New(apperr.ErrNotFound, "上传用户不存在")
	ErrClipPathExists      = apperr.New(apperr.ErrConflict, "切片路径已存在")
	ErrClipNotPending      = apperr.New(apperr.ErrConflict, "切片不处于待审核状态")
	ErrReviewClipMissing   = apperr.New(apperr.ErrConflict, "待审核的切片不存在")
	ErrClipNotReopenable   = apperr.New(apperr.ErrConflict, "切片仍处于待审核状态")
	ErrNothingChanged      = apperr.New(apperr.ErrNoMatch, "nothing changed")
	ErrRegistryUnavailable = apperr.New(apperr.ErrStorage, "注册中心不可用")
	UnExpectedError        = errors.New("系统异常，请稍后重试")
)

// ErrorMap 错误分类到 HTTP 状态码
var ErrorMap = map[error]int{
	apperr.ErrValidation: BadRequest,
	apperr.ErrNotFound:   NotFound,
	apperr.ErrConflict:   Conflict,
	apperr.ErrNoMatch:    NotFound,
	apperr.ErrStorage:    InternalServerError,
}

// StatusOf 返回错误对应的状态码，未分类错误视为 500
func StatusOf(err error) int {
	if code, ok := ErrorMap[apperr.KindOf(err)]; ok {
		return code
	}
	return InternalServerError
}
