package workspace

import (
	"errors"
	"fmt"
)

// ErrInvalidIndex is matched by every *InvalidIndexError.
var ErrInvalidIndex = errors.New("invalid question index")

// ErrStale means the question set changed while a replacement was being
// generated, so the replacement was dropped.
var ErrStale = errors.New("question set changed during regeneration")

// InvalidIndexError reports an index outside the current question set.
type InvalidIndexError struct {
	Index int
	Len   int
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("invalid question index %d (set has %d questions)", e.Index, e.Len)
}

func (e *InvalidIndexError) Is(target error) bool { return target == ErrInvalidIndex }
