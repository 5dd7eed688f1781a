package http

import (
	"errors"
	"net/http"

	"github.com/flashdeck/flashdeck/internal/service"
	"github.com/flashdeck/flashdeck/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrSyncInProgress:       http.StatusConflict,
	service.ErrFullSyncRequired:     http.StatusPreconditionRequired,
	service.ErrInvalidSyncDirection: http.StatusBadRequest,
	service.ErrInvalidChangeset:     http.StatusBadRequest,
	service.ErrEntityOwnerMismatch:  http.StatusForbidden,
	service.ErrUnknownEntityType:    http.StatusBadRequest,

	store.ErrEntityNotFound:      http.StatusNotFound,
	store.ErrSyncMetaNotFound:    http.StatusNotFound,
	store.ErrLedgerEntryNotSaved: http.StatusInternalServerError,

	store.ErrBuildingSQLQuery:       http.StatusInternalServerError,
	store.ErrExecutingQuery:         http.StatusInternalServerError,
	store.ErrExecutingStatement:     http.StatusInternalServerError,
	store.ErrScanningRow:            http.StatusInternalServerError,
	store.ErrScanningRows:           http.StatusInternalServerError,
	store.ErrBeginningTransaction:   http.StatusInternalServerError,
	store.ErrCommittingTransaction:  http.StatusInternalServerError,
	store.ErrRollingBackTransaction: http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
