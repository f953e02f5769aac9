package response

import (
	"Fieldclip/internal/api/dto"
	"Fieldclip/internal/service"
	stdjson "encoding/json"
	"errors"
	"io"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	Ok                  = 200
	Created             = 201
	BadRequest          = 400
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
)

// Success 成功返回封装
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.Response{
		Code:    Ok,
		Message: "success",
		Data:    data,
	})
}

// CreatedWith 资源创建成功
func CreatedWith(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.Response{
		Code:    Created,
		Message: "created",
		Data:    data,
	})
}

// Fail 失败返回封装，HTTP 状态码与业务码一致
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, dto.Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// Error 处理错误
func Error(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		Fail(c, BadRequest, "参数错误")
		return
	}

	var goccyTypeErr *json.UnmarshalTypeError
	var stdTypeErr *stdjson.UnmarshalTypeError
	var syntaxErr *stdjson.SyntaxError
	if errors.As(err, &goccyTypeErr) || errors.As(err, &stdTypeErr) || errors.As(err, &syntaxErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		Fail(c, BadRequest, "Json错误")
		return
	}

	code := service.StatusOf(err)
	if code == InternalServerError {
		log.ErrorContext(c.Request.Context(), "Error", "err", err)
		message := service.UnExpectedError.Error()
		if errors.Is(err, service.ErrRegistryUnavailable) {
			message = service.ErrRegistryUnavailable.Error()
		}
		Fail(c, code, message)
		return
	}
	Fail(c, code, err.Error())
}
