package domain

import "errors"

// ErrDuplicate is returned by repositories when a write collides with a
// unique key.
var ErrDuplicate = errors.New("duplicate record")
