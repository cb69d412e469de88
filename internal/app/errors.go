package app

import "errors"

// ErrConflict is returned when an intent kept losing the race against
// concurrent writers. The intent can be re-issued.
var ErrConflict = errors.New("session changed concurrently, try again")
