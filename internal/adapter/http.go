package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/flashdeck/flashdeck/internal/config"
	"github.com/flashdeck/flashdeck/internal/logger"
	"github.com/flashdeck/flashdeck/internal/utils"
	"github.com/flashdeck/flashdeck/models"
	"github.com/go-resty/resty/v2"
)

// usnResponse is the body returned by the remote push endpoints.
type usnResponse struct {
	USN int64 `json:"usn"`
}

// snapshotEnvelope is the body exchanged by the remote snapshot endpoints.
type snapshotEnvelope struct {
	Snapshot models.Collection `json:"snapshot"`
	USN      int64             `json:"usn"`
}

type httpRemoteGateway struct {
	client *resty.Client
	app    config.App

	logger *logger.Logger
}

// NewHTTPRemoteGateway constructs the HTTP/REST implementation of
// [RemoteGateway] against a real remote peer. Requests authenticate with a
// short-lived JWT minted from the shared App token parameters, so both
// peers must agree on the signing key and issuer.
//
// Returns an error if remoteCfg.BaseURL is empty or cannot be parsed as a
// valid URL.
func NewHTTPRemoteGateway(remoteCfg config.Remote, appCfg config.App, log *logger.Logger) (RemoteGateway, error) {
	baseURL, err := normalizeBaseURL(remoteCfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote base url: %w", err)
	}

	timeout := remoteCfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &httpRemoteGateway{client: client, app: appCfg, logger: log}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// FetchChanges implements [RemoteGateway]. It GETs the remote ledger tail
// past sinceUSN from GET /api/remote/changes.
func (h *httpRemoteGateway) FetchChanges(ctx context.Context, userID, sinceUSN int64) (models.Changeset, error) {
	var changes models.Changeset

	req, err := h.authedRequest(ctx, userID)
	if err != nil {
		return models.Changeset{}, err
	}

	resp, err := req.
		SetQueryParam("since", strconv.FormatInt(sinceUSN, 10)).
		SetResult(&changes).
		Get("/api/remote/changes")
	if err != nil {
		return models.Changeset{}, fmt.Errorf("fetch changes request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Changeset{}, err
	}

	return changes, nil
}

// PushChanges implements [RemoteGateway]. It POSTs the changeset to
// POST /api/remote/changes and returns the remote USN after recording.
func (h *httpRemoteGateway) PushChanges(ctx context.Context, userID int64, changes models.Changeset) (int64, error) {
	req, err := h.authedRequest(ctx, userID)
	if err != nil {
		return 0, err
	}

	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetBody(changes).
		Post("/api/remote/changes")
	if err != nil {
		return 0, fmt.Errorf("push changes request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return 0, err
	}

	var result usnResponse
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return 0, fmt.Errorf("decode push changes response: %w", err)
	}

	return result.USN, nil
}

// FetchSnapshot implements [RemoteGateway]. It GETs the remote's full state
// and its current USN from GET /api/remote/snapshot.
func (h *httpRemoteGateway) FetchSnapshot(ctx context.Context, userID int64) (models.Collection, int64, error) {
	var envelope snapshotEnvelope

	req, err := h.authedRequest(ctx, userID)
	if err != nil {
		return models.Collection{}, 0, err
	}

	resp, err := req.
		SetResult(&envelope).
		Get("/api/remote/snapshot")
	if err != nil {
		return models.Collection{}, 0, fmt.Errorf("fetch snapshot request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Collection{}, 0, err
	}

	return envelope.Snapshot, envelope.USN, nil
}

// PushSnapshot implements [RemoteGateway]. It POSTs the full local state to
// POST /api/remote/snapshot, replacing everything the remote holds for the
// user, and returns the remote USN after the replacement.
func (h *httpRemoteGateway) PushSnapshot(ctx context.Context, userID int64, snapshot models.Collection) (int64, error) {
	req, err := h.authedRequest(ctx, userID)
	if err != nil {
		return 0, err
	}

	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetBody(snapshotEnvelope{Snapshot: snapshot}).
		Post("/api/remote/snapshot")
	if err != nil {
		return 0, fmt.Errorf("push snapshot request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return 0, err
	}

	var result usnResponse
	if err = json.Unmarshal(resp.Body(), &result); err != nil {
		return 0, fmt.Errorf("decode push snapshot response: %w", err)
	}

	return result.USN, nil
}

func (h *httpRemoteGateway) authedRequest(ctx context.Context, userID int64) (*resty.Request, error) {
	token, err := utils.GenerateJWTToken(h.app.TokenIssuer, userID, h.app.TokenDuration, h.app.TokenSignKey)
	if err != nil {
		return nil, fmt.Errorf("mint gateway token: %w", err)
	}

	return h.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token.SignedString), nil
}
