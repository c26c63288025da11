package persistence

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailConflict    = errors.New("email already registered")
	ErrCacheKeyNotFound = errors.New("cache key not found")
)
