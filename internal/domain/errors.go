package domain

import (
	"errors"
	"net/http"
)

// ErrorCode classifies an AppError.
type ErrorCode int

// Error codes for business logic errors.
const (
	CodeNotFound ErrorCode = iota + 1
	CodeAlreadyExists
	CodeValidation
	CodeInternal
	CodeInvalidQuery
)

var codeNames = map[ErrorCode]string{
	CodeNotFound:      "not_found",
	CodeAlreadyExists: "already_exists",
	CodeValidation:    "validation",
	CodeInternal:      "internal",
	CodeInvalidQuery:  "invalid_query",
}

var codeStatus = map[ErrorCode]int{
	CodeNotFound:      http.StatusNotFound,
	CodeAlreadyExists: http.StatusConflict,
	CodeValidation:    http.StatusBadRequest,
	CodeInvalidQuery:  http.StatusBadRequest,
	CodeInternal:      http.StatusInternalServerError,
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unknown"
}

// AppError is a business error carrying a code, a client-safe message and an
// optional cause.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError with the same code, so errors.Is(err, ErrNotFound)
// holds for freshly built not-found errors too.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Predefined business errors.
var (
	ErrNotFound      = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &AppError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrInternal      = &AppError{Code: CodeInternal, Message: "internal error"}
	ErrInvalidQuery  = &AppError{Code: CodeInvalidQuery, Message: "invalid list query"}
)

// NewAppError creates an AppError.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// InvalidQuery wraps a malformed list query parameter, e.g. an undecodable
// filters value.
func InvalidQuery(param string, err error) *AppError {
	return NewAppError(CodeInvalidQuery, "invalid "+param, err)
}

func IsNotFound(err error) bool      { return hasCode(err, CodeNotFound) }
func IsAlreadyExists(err error) bool { return hasCode(err, CodeAlreadyExists) }
func IsValidation(err error) bool    { return hasCode(err, CodeValidation) }
func IsInvalidQuery(err error) bool  { return hasCode(err, CodeInvalidQuery) }
func IsInternal(err error) bool      { return hasCode(err, CodeInternal) }

// CodeOf returns the code of the outermost AppError in err's chain, or 0.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 0
}

func hasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// HTTPStatusCode maps err to an HTTP status. Anything that is not a known
// AppError is a 500.
func HTTPStatusCode(err error) int {
	if status, ok := codeStatus[CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
