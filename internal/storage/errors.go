package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrEncoding indicates on-disk bytes that cannot be decoded,
	// such as an unknown page or value tag.
	ErrEncoding = errors.New("storage: cannot decode")

	// ErrInvalidInput indicates a request that cannot be satisfied,
	// such as a schema too large for the file header.
	ErrInvalidInput = errors.New("storage: invalid input")
)

// MaxSizeError is returned when a (key, row) entry exceeds the
// per-page budget. No state changes when it is returned.
type MaxSizeError struct {
	Received int
	Limit    int
}

func (e *MaxSizeError) Error() string {
	return fmt.Sprintf("storage: entry of %d bytes exceeds page limit of %d", e.Received, e.Limit)
}
