package store

import "errors"

// Sentinel errors returned by query operations. Callers branch on these with
// errors.Is; everything else is a transport or constraint failure from the
// underlying table store.
var (
	ErrNotFound        = errors.New("record not found")
	ErrUnauthenticated = errors.New("operation requires an authenticated client")
	ErrForbidden       = errors.New("caller is not allowed to perform this operation")
)
