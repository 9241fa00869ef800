package ports

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrServiceStopped = errors.New("terrain service stopped")
)
