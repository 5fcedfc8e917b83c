package repository

import "errors"

// ErrNotFound is returned by Get when the store holds no value for the key.
// Callers treat it as "nothing saved yet" rather than a failure.
var ErrNotFound = errors.New("repository: not found")
