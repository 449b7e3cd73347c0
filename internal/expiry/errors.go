package expiry

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord means the stored value has no decodable Created
	// field. The store is left untouched.
	ErrMalformedRecord = errors.New("expiry: malformed consent record")

	// ErrStoreAccess matches every *StoreError.
	ErrStoreAccess = errors.New("expiry: store access failed")
)

// StoreError reports a failed store call made during a check.
type StoreError struct {
	Op  string // "get" or "remove"
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("expiry: store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrStoreAccess) match any StoreError.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreAccess
}
