// Package dberr defines the error taxonomy shared by every engine layer.
// Call sites wrap these sentinels with fmt.Errorf("...: %w", ...) so callers
// can classify failures with errors.Is without parsing messages.
package dberr

import "errors"

var (
	// ErrNotFound reports a table, index, page or key that was required to exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists reports a duplicate creation (database file, table, index).
	ErrAlreadyExists = errors.New("already exists")

	// ErrOutOfBounds reports a page offset, size or page id outside the valid range.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrFormat reports a malformed header, wrong-size buffer or bad magic number.
	ErrFormat = errors.New("invalid format")

	// ErrUnsupportedKeyType reports a key that cannot be serialized for ordering.
	ErrUnsupportedKeyType = errors.New("unsupported key type")
)
