// Package errors holds the JSON error body of the /api routes.
package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Code classifies an API error for clients.
type Code string

const (
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInternal     Code = "INTERNAL_ERROR"
)

var codeStatus = map[Code]int{
	CodeUnauthorized: http.StatusUnauthorized,
	CodeInvalidInput: http.StatusBadRequest,
	CodeNotFound:     http.StatusNotFound,
	CodeInternal:     http.StatusInternalServerError,
}

var defaultMessages = map[Code]string{
	CodeUnauthorized: "Not authorized",
	CodeInvalidInput: "Invalid request",
	CodeNotFound:     "Resource not found",
	CodeInternal:     "Internal server error",
}

// APIError is the body written for every failed API request.
type APIError struct {
	Message string `json:"error"`
	Code    Code   `json:"code"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Status is the HTTP status that goes with the code.
func (e *APIError) Status() int {
	if status, ok := codeStatus[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// New builds an APIError, falling back to the code's default message.
func New(code Code, message string) *APIError {
	if message == "" {
		message = defaultMessages[code]
	}
	return &APIError{Message: message, Code: code}
}

// Respond writes err and stops the handler chain.
func Respond(c *gin.Context, err *APIError) {
	c.AbortWithStatusJSON(err.Status(), err)
}

func Unauthorized(c *gin.Context, message string) {
	Respond(c, New(CodeUnauthorized, message))
}

func BadRequest(c *gin.Context, message string) {
	Respond(c, New(CodeInvalidInput, message))
}

func NotFound(c *gin.Context, message string) {
	Respond(c, New(CodeNotFound, message))
}

func InternalError(c *gin.Context, message string) {
	Respond(c, New(CodeInternal, message))
}
