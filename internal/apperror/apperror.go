package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind классифицирует ошибку для клиента и HTTP слоя
type Kind string

const (
	KindValidation        Kind = "validation"
	KindSlotUnavailable   Kind = "slot_unavailable"
	KindInvalidTransition Kind = "invalid_transition"
	KindMissingReason     Kind = "missing_reason"
	KindConflict          Kind = "conflict"
	KindNotFound          Kind = "not_found"
	KindNetwork           Kind = "network"
	KindInternal          Kind = "internal"
)

// Error классифицированная ошибка приложения. Code уточняет Kind,
// например ошибка валидации с кодом "overlap".
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает Kind, а Code только если он задан у target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

var (
	ErrValidation         = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrOverlap            = &Error{Kind: KindValidation, Code: "overlap", Message: "time slot overlaps an existing active slot"}
	ErrDailyLimitExceeded = &Error{Kind: KindValidation, Code: "daily_limit_exceeded", Message: "active slots exceed 24 hours for the day"}
	ErrEndBeforeStart     = &Error{Kind: KindValidation, Code: "end_before_start", Message: "end time must be after start time"}
	ErrUnknownReason      = &Error{Kind: KindValidation, Code: "unknown_reason", Message: "unknown cancellation reason"}
	ErrSlotUnavailable    = &Error{Kind: KindSlotUnavailable, Message: "selected time slot is not available"}
	ErrInvalidTransition  = &Error{Kind: KindInvalidTransition, Message: "booking is not scheduled"}
	ErrMissingReason      = &Error{Kind: KindMissingReason, Message: "reason is required"}
	ErrConflict           = &Error{Kind: KindConflict, Message: "resource was modified concurrently, re-fetch and retry"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "not found"}
	ErrNetwork            = &Error{Kind: KindNetwork, Message: "network error"}
)

// New ошибка заданного вида с форматированным сообщением
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// With копирует sentinel с его Kind и Code, заменяя сообщение
func With(sentinel *Error, format string, args ...any) *Error {
	return &Error{Kind: sentinel.Kind, Code: sentinel.Code, Message: fmt.Sprintf(format, args...)}
}

// Validation общая ошибка валидации
func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

// NotFound ошибка с именем ненайденной сущности
func NotFound(entity string, id any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %v not found", entity, id)}
}

// Network оборачивает ошибку транспорта
func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "network error", Err: err}
}

// KindOf вид ошибки, KindInternal для неклассифицированных
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// CodeOf код классифицированной ошибки
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HTTPStatus HTTP-статус для вида ошибки
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindMissingReason:
		return http.StatusBadRequest
	case KindSlotUnavailable, KindInvalidTransition, KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// FromHTTP восстанавливает ошибку из ответа REST.
// Поле code различает виды с одинаковым статусом.
func FromHTTP(status int, kind, code, message string) *Error {
	if message == "" {
		message = http.StatusText(status)
	}
	if k := Kind(kind); k != "" {
		return &Error{Kind: k, Code: code, Message: message}
	}

	switch status {
	case http.StatusUnprocessableEntity:
		return &Error{Kind: KindValidation, Code: code, Message: message}
	case http.StatusBadRequest:
		if code == string(KindMissingReason) {
			return &Error{Kind: KindMissingReason, Message: message}
		}
		return &Error{Kind: KindValidation, Code: code, Message: message}
	case http.StatusNotFound:
		return &Error{Kind: KindNotFound, Message: message}
	case http.StatusConflict:
		return &Error{Kind: KindConflict, Code: code, Message: message}
	default:
		return &Error{Kind: KindInternal, Code: code, Message: message}
	}
}
