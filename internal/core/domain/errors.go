package domain

import (
	"errors"
	"fmt"
)

var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
