package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")

	ErrInvalidUserID     = errors.New("invalid user ID")
	ErrInvalidEntityID   = errors.New("invalid entity id")
	ErrInvalidEntityType = errors.New("invalid entity type")
	ErrInvalidChangeType = errors.New("invalid change type")
	ErrNegativeUSN       = errors.New("usn cannot be negative")
)
