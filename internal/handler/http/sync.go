package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/flashdeck/flashdeck/internal/logger"
	"github.com/flashdeck/flashdeck/internal/service"
	"github.com/flashdeck/flashdeck/internal/utils"
	"github.com/flashdeck/flashdeck/models"
)

// usnResponse is the body returned by endpoints that advance the change
// counter.
type usnResponse struct {
	USN int64 `json:"usn"`
}

// snapshotEnvelope is the body exchanged by the snapshot endpoints.
type snapshotEnvelope struct {
	Snapshot models.Collection `json:"snapshot"`
	USN      int64             `json:"usn"`
}

func (h *Handler) getSyncStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.getSyncStatus").Msg("no user ID was given")
		http.Error(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	status, err := h.services.Sync.Status(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getSyncStatus").Msg("error getting sync status")
		http.Error(w, "error getting sync status", statusFromError(err))
		return
	}

	utils.WriteJSON(w, status, http.StatusOK)
}

func (h *Handler) incrementalSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.incrementalSync").Msg("no user ID was given")
		http.Error(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	result, err := h.services.Sync.IncrementalSync(ctx, userID)
	if err != nil {
		// busy and needs-full are outcomes, not failures: the caller still
		// gets the result body so the reported watermark survives
		if errors.Is(err, service.ErrSyncInProgress) || errors.Is(err, service.ErrFullSyncRequired) {
			log.Warn().Err(err).Str("func", "*Handler.incrementalSync").Msg("incremental sync not performed")
			utils.WriteJSON(w, result, statusFromError(err))
			return
		}
		log.Err(err).Str("func", "*Handler.incrementalSync").Msg("incremental sync failed")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, result, http.StatusOK)
}

func (h *Handler) fullSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.fullSync").Msg("no user ID was given")
		http.Error(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	direction := models.SyncDirection(r.URL.Query().Get("direction"))

	result, err := h.services.Sync.FullSync(ctx, userID, direction)
	if err != nil {
		if errors.Is(err, service.ErrSyncInProgress) {
			log.Warn().Err(err).Str("func", "*Handler.fullSync").Msg("full sync not performed")
			utils.WriteJSON(w, result, statusFromError(err))
			return
		}
		log.Err(err).Str("func", "*Handler.fullSync").Msg("full sync failed")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, result, http.StatusOK)
}

func (h *Handler) getLocalChanges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.getLocalChanges").Msg("no user ID was given")
		http.Error(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	sinceUSN, err := sinceParam(r)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getLocalChanges").Msg("invalid `since` query parameter")
		http.Error(w, "invalid `since` query parameter", http.StatusBadRequest)
		return
	}

	changes, err := h.services.Changeset.ChangesSince(ctx, userID, sinceUSN)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getLocalChanges").Msg("error building changeset")
		http.Error(w, "error building changeset", statusFromError(err))
		return
	}

	utils.WriteJSON(w, changes, http.StatusOK)
}

func (h *Handler) recordChanges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.recordChanges").Msg("no user ID was given")
		http.Error(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	var changes models.Changeset
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		log.Err(err).Str("func", "*Handler.recordChanges").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	usn, err := h.services.Ledger.RecordChanges(ctx, userID, changes)
	if err != nil {
		log.Err(err).Str("func", "*Handler.recordChanges").Msg("error recording changes")
		http.Error(w, "error recording changes", statusFromError(err))
		return
	}

	utils.WriteJSON(w, usnResponse{USN: usn}, http.StatusOK)
}

// sinceParam parses the optional `since` query parameter. A missing
// parameter means "from the beginning".
func sinceParam(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
