package service

import "errors"

var (
	ErrSyncInProgress   = errors.New("sync already in progress")
	ErrFullSyncRequired = errors.New("full sync required")

	ErrInvalidSyncDirection = errors.New("invalid sync direction")
	ErrInvalidChangeset     = errors.New("invalid changeset")
	ErrEntityOwnerMismatch  = errors.New("entity owner does not match user")
	ErrUnknownEntityType    = errors.New("unknown entity type")
)
