package repository

import (
	"errors"
)

// Sentinel kinds for store errors. Callers match them with errors.Is.
var (
	ErrSchema       = errors.New("ensure schema failed")
	ErrWrite        = errors.New("write score failed")
	ErrRead         = errors.New("read scores failed")
	ErrDecode       = errors.New("decode score failed")
	ErrLockPoisoned = errors.New("store guard poisoned")
	ErrClock        = errors.New("clock read failed")
	ErrClosed       = errors.New("store closed")
)

// kindLabel maps an error to a short label for metrics.
func kindLabel(err error) string {
	switch {
	case errors.Is(err, ErrLockPoisoned):
		return "poisoned"
	case errors.Is(err, ErrClock):
		return "clock"
	case errors.Is(err, ErrWrite):
		return "write"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrRead):
		return "read"
	case errors.Is(err, ErrClosed):
		return "closed"
	default:
		return "unknown"
	}
}
