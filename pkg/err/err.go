package errprocess

import (
	"errors"
	"fmt"

	"chat_delivery_service/pkg/logger"
)

// 錯誤分類，呼叫端用 errors.Is 判斷
var (
	// ErrNotFound room / day bucket / message / user is absent
	ErrNotFound = errors.New("not found")
	// ErrValidation malformed identifiers, surfaced immediately, not retried
	ErrValidation = errors.New("validation failed")
	// ErrConcurrentUpdate storage conflict on conditional update, caller retry bounded
	ErrConcurrentUpdate = errors.New("concurrent update")
)

// Set set err info
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}

// NotFound wrap ErrNotFound with what is absent
func NotFound(what string) error {
	return fmt.Errorf("%s: %w", what, ErrNotFound)
}

// Validation wrap ErrValidation with what is malformed
func Validation(what string) error {
	return fmt.Errorf("%s: %w", what, ErrValidation)
}

// ConcurrentUpdate wrap ErrConcurrentUpdate with the aggregate that conflicted
func ConcurrentUpdate(what string) error {
	return fmt.Errorf("%s: %w", what, ErrConcurrentUpdate)
}
