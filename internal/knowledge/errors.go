package knowledge

import (
	"errors"
	"fmt"
)

// ErrReadOnly is returned by SaveBank when no writable directory is
// configured.
var ErrReadOnly = errors.New("knowledge base has no writable directory")

// ErrUnknownSubject is returned for a subject that is not in the manifest.
var ErrUnknownSubject = errors.New("unknown subject")

// AssetLoadError records a subject asset that could not be read or decoded.
// Load logs these and continues with whatever else loaded.
type AssetLoadError struct {
	Subject string
	Path    string
	Err     error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("load %s asset %s: %v", e.Subject, e.Path, e.Err)
}

func (e *AssetLoadError) Unwrap() error { return e.Err }
