package domain

import "errors"

// ErrNotFound is returned by a Store when no document has the requested id.
var ErrNotFound = errors.New("document not found")
