package storage

import "github.com/pkg/errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidCID  = errors.New("invalid cid")
	ErrCIDMismatch = errors.New("stored object does not match cid")
	ErrClosed      = errors.New("store closed")
)

// IsNotFound reports whether err, or anything it wraps, is ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
