package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/quolldev/grantd/internal/issuer/domain"
	"github.com/quolldev/grantd/internal/issuer/service"
	"github.com/quolldev/grantd/pkg/httpx"
	"github.com/quolldev/grantd/pkg/slogx"
)

// IssueHandler handles POST /v1/issue, the authorization-code issuance
// endpoint. The caller is the authentication front end, which has already
// authenticated the end user and validated the authorize request; this
// endpoint only mints and records the code.
type IssueHandler struct {
	IssueService *service.IssueService
}

// IssueRequest is the issuance request body.
type IssueRequest struct {
	ClientID            string `json:"client_id"`
	RedirectURI         string `json:"redirect_uri"`
	Scope               string `json:"scope,omitempty"`
	UserID              string `json:"user_id"`
	Username            string `json:"username,omitempty"`
	UserTenantDomain    string `json:"user_tenant_domain,omitempty"`
	Federated           bool   `json:"federated,omitempty"`
	TenantDomain        string `json:"tenant_domain,omitempty"`
	CodeChallenge       string `json:"code_challenge,omitempty"`
	CodeChallengeMethod string `json:"code_challenge_method,omitempty"`
	SessionDataKey      string `json:"session_data_key,omitempty"`
	ValiditySeconds     int64  `json:"validity_seconds,omitempty"`
}

// IssueResponse is the issuance response body. The code appears here and
// in the cache only; the durable record carries its fingerprint.
type IssueResponse struct {
	Code           string `json:"code"`
	CodeID         string `json:"code_id"`
	RedirectURI    string `json:"redirect_uri"`
	ExpiresIn      int64  `json:"expires_in"`
	Scope          string `json:"scope,omitempty"`
	SessionDataKey string `json:"session_data_key,omitempty"`
}

func (h *IssueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return
	}

	if req.ClientID == "" || req.RedirectURI == "" || req.UserID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request",
			"client_id, redirect_uri and user_id are required")
		return
	}

	result, err := h.IssueService.Issue(ctx, service.IssueRequest{
		ClientID: req.ClientID,
		Principal: domain.Principal{
			UserID:       req.UserID,
			Username:     req.Username,
			Federated:    req.Federated,
			TenantDomain: req.UserTenantDomain,
		},
		TenantDomain:        req.TenantDomain,
		Scopes:              httpx.ParseSpaceDelimitedFields(req.Scope),
		RedirectURI:         req.RedirectURI,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
		SessionDataKey:      req.SessionDataKey,
		ValidityOverride:    time.Duration(req.ValiditySeconds) * time.Second,
	})
	if err != nil {
		writeIssueError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, IssueResponse{
		Code:           result.Code,
		CodeID:         result.CodeID,
		RedirectURI:    result.RedirectURI,
		ExpiresIn:      int64(result.Validity.Seconds()),
		Scope:          req.Scope,
		SessionDataKey: req.SessionDataKey,
	})
}

func writeIssueError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownClient):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_client", "Unknown client")
	case errors.Is(err, service.ErrInvalidRequest):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed issuance request")
	case errors.Is(err, service.ErrInvalidConfiguration):
		log.Error("issuance misconfigured", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Issuance is misconfigured")
	default:
		log.Error("failed to issue authorization code", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to issue authorization code")
	}
}
