package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusInvalidToken is the non-standard status returned for a token that
// was presented but could not be verified.
const StatusInvalidToken = 498

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code, so callers can
// write errors.Is(err, apperrors.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Kind sentinels. Compare with errors.Is; never mutate.
var (
	ErrInvalidInput    = New(http.StatusBadRequest, "Invalid input", nil)
	ErrUnauthorized    = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrInvalidToken    = New(StatusInvalidToken, "Token not valid", nil)
	ErrNotFound        = New(http.StatusNotFound, "Not found", nil)
	ErrConflict        = New(http.StatusConflict, "Conflict", nil)
	ErrTooManyRequests = New(http.StatusTooManyRequests, "Too many requests", nil)
	ErrInternalServer  = New(http.StatusInternalServerError, "Internal server error", nil)
)

func InvalidInput(message string) *Error {
	return New(http.StatusBadRequest, message, nil)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message, nil)
}

func InvalidToken(message string, err error) *Error {
	return New(StatusInvalidToken, message, err)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message, nil)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, message, nil)
}

// Internal wraps an unexpected failure. The message is what the client sees.
func Internal(message string, err error) *Error {
	return New(http.StatusInternalServerError, message, err)
}

// From converts any error into an *Error, falling back to a generic 500.
func From(err error) *Error {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal("Internal server error", err)
}

// Envelope is the uniform response body shared by success and error paths.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Token   string `json:"token,omitempty"`
}

// HandleError writes err as an error envelope on a plain http.ResponseWriter.
func HandleError(w http.ResponseWriter, err error) {
	appErr := From(err)
	body, _ := json.Marshal(Envelope{Success: false, Message: publicMessage(appErr)})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Code)
	w.Write(body)
}

// ErrorMiddleware renders the last error pushed with c.Error as an envelope.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := From(c.Errors.Last().Err)
		c.JSON(appErr.Code, Envelope{Success: false, Message: publicMessage(appErr)})
		c.Abort()
	}
}

// NoRoute answers unmatched routes with the standard 404 envelope.
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Envelope{Success: false, Message: "This route is not available."})
	}
}

// 5xx details stay in the logs.
func publicMessage(e *Error) string {
	if e.Code >= http.StatusInternalServerError {
		return e.Message
	}
	return e.Error()
}
