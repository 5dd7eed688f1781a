package http

import (
	"encoding/json"
	"net/http"

	"github.com/flashdeck/flashdeck/internal/logger"
	"github.com/flashdeck/flashdeck/internal/utils"
	"github.com/flashdeck/flashdeck/models"
)

// The /api/remote endpoints are the serving side of the engine: the surface
// other devices point their gateway at.

func (h *Handler) getRemoteChanges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.getRemoteChanges").Msg("no user ID was given")
		http.Error(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	sinceUSN, err := sinceParam(r)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getRemoteChanges").Msg("invalid `since` query parameter")
		http.Error(w, "invalid `since` query parameter", http.StatusBadRequest)
		return
	}

	changes, err := h.services.Remote.ChangesSince(ctx, userID, sinceUSN)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getRemoteChanges").Msg("error building changeset")
		http.Error(w, "error building changeset", statusFromError(err))
		return
	}

	utils.WriteJSON(w, changes, http.StatusOK)
}

func (h *Handler) pushRemoteChanges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.pushRemoteChanges").Msg("no user ID was given")
		http.Error(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	var changes models.Changeset
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		log.Err(err).Str("func", "*Handler.pushRemoteChanges").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	usn, err := h.services.Remote.RecordChanges(ctx, userID, changes)
	if err != nil {
		log.Err(err).Str("func", "*Handler.pushRemoteChanges").Msg("error recording pushed changes")
		http.Error(w, "error recording pushed changes", statusFromError(err))
		return
	}

	utils.WriteJSON(w, usnResponse{USN: usn}, http.StatusOK)
}

func (h *Handler) getRemoteSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.getRemoteSnapshot").Msg("no user ID was given")
		http.Error(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	snapshot, usn, err := h.services.Remote.Snapshot(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getRemoteSnapshot").Msg("error building snapshot")
		http.Error(w, "error building snapshot", statusFromError(err))
		return
	}

	utils.WriteJSON(w, snapshotEnvelope{Snapshot: snapshot, USN: usn}, http.StatusOK)
}

func (h *Handler) replaceRemoteSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, found := utils.GetUserIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.replaceRemoteSnapshot").Msg("no user ID was given")
		http.Error(w, "no user ID was given", http.StatusBadRequest)
		return
	}

	var envelope snapshotEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		log.Err(err).Str("func", "*Handler.replaceRemoteSnapshot").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	usn, err := h.services.Remote.ReplaceSnapshot(ctx, userID, envelope.Snapshot)
	if err != nil {
		log.Err(err).Str("func", "*Handler.replaceRemoteSnapshot").Msg("error replacing snapshot")
		http.Error(w, "error replacing snapshot", statusFromError(err))
		return
	}

	utils.WriteJSON(w, usnResponse{USN: usn}, http.StatusOK)
}
