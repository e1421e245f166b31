package cache

import "errors"

// ErrMiss means the backend holds no catalog.
var ErrMiss = errors.New("catalog cache miss")
