package types

import (
	"fmt"
	"net/http"
)

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// Unauthorized builds the CustomError surfaced when a request carries no
// usable credentials.
func Unauthorized(errorType, format string, args ...interface{}) *CustomError {
	return &CustomError{
		Code:    http.StatusUnauthorized,
		Message: fmt.Sprintf(format, args...),
		Type:    errorType,
	}
}
