package util

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindInvalidState ErrorKind = "invalid_state"
	KindValidation   ErrorKind = "validation"
	KindConflict     ErrorKind = "conflict"
	KindForbidden    ErrorKind = "forbidden"
	KindInternal     ErrorKind = "internal"
)

// AppError carries a user-facing message and the taxonomy kind used to pick
// the HTTP status. Err keeps the underlying cause for logging.
type AppError struct {
	Kind    ErrorKind
	Message string
	Errors  []string
	Data    interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewNotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewInvalidState(message string) *AppError {
	return &AppError{Kind: KindInvalidState, Message: message}
}

func NewValidation(message string, errs []string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Errors: errs}
}

// NewConflict optionally carries data for the caller, such as the id of an
// attempt that can be resumed.
func NewConflict(message string, data interface{}) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Data: data}
}

func NewForbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewInternal(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind of err, treating anything untyped as internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

var (
	ErrQuizNotFound       = NewNotFound("quiz não encontrado")
	ErrCourseNotFound     = NewNotFound("curso não encontrado")
	ErrEnrollmentNotFound = NewNotFound("inscrição no curso não encontrada")
	ErrNoActiveAttempt    = NewNotFound("nenhuma tentativa ativa para este quiz")
	ErrResponseNotFound   = NewNotFound("resposta não encontrada")
	ErrQuizUnavailable    = NewInvalidState("quiz não disponível")
	ErrQuizExpired        = NewInvalidState("quiz expirado")
	ErrCourseNotSelfPaced = NewInvalidState("quizzes só são permitidos em cursos assíncronos")
	ErrNotEnrolled        = NewForbidden("não está inscrito neste curso")
	ErrAlreadyCompleted   = NewConflict("quiz já concluído", nil)
	ErrAttemptBusy        = NewConflict("outra operação sobre esta tentativa está em curso", nil)
)
