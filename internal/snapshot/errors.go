package snapshot

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the snapshot source does not exist.
	ErrNotFound = errors.New("snapshot not found")
	// ErrFormat is returned when the snapshot lacks the expected named tables.
	ErrFormat = errors.New("invalid snapshot format")
)

// LoadError wraps every failure to load a snapshot. Use errors.Is with
// ErrNotFound or ErrFormat to tell the specific cases apart.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading snapshot %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
