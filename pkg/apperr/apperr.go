package apperr

import (
	"errors"
	"fmt"
)

// ValidationError 表示请求数据不合法
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Validation builds a ValidationError from a format string.
func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// AuthorizationError 表示权限不足的错误
type AuthorizationError struct {
	UserID int
	Action string
}

func (e *AuthorizationError) Error() string {
	return "insufficient permissions"
}

func Forbidden(userID int, action string) error {
	return &AuthorizationError{UserID: userID, Action: action}
}

// NotFoundError covers both entities that do not exist and entities
// outside the caller's visible set. The two are deliberately
// indistinguishable so that existence does not leak.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

func NotFound(entity string, id int) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError 表示唯一约束冲突
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string {
	return e.Msg
}

func Conflict(format string, args ...any) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// ConsistencyError marks a multi-row mutation that failed partway and
// was rolled back. Callers may retry the whole operation.
type ConsistencyError struct {
	Op  string
	Err error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConsistencyError) Unwrap() error {
	return e.Err
}

func Consistency(op string, err error) error {
	return &ConsistencyError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
