package types

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the parent of every caller input error; test with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// Input errors.
var (
	ErrInvalidRef       = fmt.Errorf("%w: invalid object reference", ErrInvalidInput)
	ErrInvalidItemType  = fmt.Errorf("%w: invalid catalog item type", ErrInvalidInput)
	ErrNoItemsOrInsight = fmt.Errorf("%w: no items or insight was specified", ErrInvalidInput)
	ErrItemsAndInsight  = fmt.Errorf("%w: items and insight are mutually exclusive", ErrInvalidInput)
)

// Resolution errors.
var (
	ErrMappingNotFound = errors.New("identifier mapping not found")
	ErrInvariant       = errors.New("invariant violation")
)

// Snapshot store errors.
var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrStoreClosed      = errors.New("snapshot store is closed")
)

// InvariantError reports a broken programming contract, such as an item
// variant a resolver does not know how to handle. It is never retried.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: invariant violation: %s", e.Op, e.Detail)
}

// Is makes errors.Is(err, ErrInvariant) hold for every InvariantError.
func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}
