package util

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"learnhub_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// exposeErrors is set once at start-up from server.expose_errors.
var exposeErrors bool

func SetExposeErrors(v bool) {
	exposeErrors = v
}

func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Fail(c *gin.Context, code int, message string, errs []string, data interface{}) {
	c.JSON(code, Response{
		Success: false,
		Message: message,
		Data:    data,
		Errors:  errs,
	})
}

func Unauthorized(c *gin.Context) {
	Fail(c, http.StatusUnauthorized, "não autenticado", nil, nil)
}

func Forbidden(c *gin.Context) {
	Fail(c, http.StatusForbidden, "acesso negado", nil, nil)
}

func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message, nil, nil)
}

func StatusFor(kind ErrorKind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState, KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes err using the envelope. Internal failures are logged
// in full and reported generically unless expose_errors is on.
func HandleError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Kind == KindInternal {
		logger.Log.Error("Internal server error",
			zap.Error(err),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(RequestIDKey)),
		)
		var details []string
		if exposeErrors {
			details = []string{fmt.Sprintf("%+v", err), string(debug.Stack())}
		}
		Fail(c, http.StatusInternalServerError, "erro interno do servidor", details, nil)
		return
	}
	Fail(c, StatusFor(appErr.Kind), appErr.Message, appErr.Errors, appErr.Data)
}
