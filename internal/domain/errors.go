package domain

import "errors"

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrAlreadyExists       = errors.New("already exists")
	ErrNotFound            = errors.New("not found")
	ErrRetentionNotExpired = errors.New("retention period not yet expired")
	ErrAlreadyDeleted      = errors.New("already deleted")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrDecode              = errors.New("decode error")
	ErrForbidden           = errors.New("forbidden")
)

// Error kind codes, stable for the gateway layer to translate into
// protocol-level responses.
const (
	KindInvalidArgument     = "INVALID_ARGUMENT"
	KindAlreadyExists       = "ALREADY_EXISTS"
	KindNotFound            = "NOT_FOUND"
	KindRetentionNotExpired = "RETENTION_NOT_EXPIRED"
	KindAlreadyDeleted      = "ALREADY_DELETED"
	KindConcurrencyConflict = "CONCURRENCY_CONFLICT"
	KindDecode              = "DECODE_ERROR"
	KindForbidden           = "FORBIDDEN"
	KindInternal            = "INTERNAL"
)

// KindOf maps an error (possibly wrapped) to its stable kind code so
// callers can branch without string-matching messages.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrRetentionNotExpired):
		return KindRetentionNotExpired
	case errors.Is(err, ErrAlreadyDeleted):
		return KindAlreadyDeleted
	case errors.Is(err, ErrConcurrencyConflict):
		return KindConcurrencyConflict
	case errors.Is(err, ErrDecode):
		return KindDecode
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	default:
		return KindInternal
	}
}
