package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/quolldev/grantd/internal/issuer/service"
	"github.com/quolldev/grantd/pkg/httpx"
	"github.com/quolldev/grantd/pkg/slogx"
)

// ClientsHandler handles the client registry management endpoints.
type ClientsHandler struct {
	ClientService *service.ClientService
}

// CreateClientRequest is the client registration request body.
type CreateClientRequest struct {
	Name         string   `json:"name"`
	Confidential bool     `json:"confidential"`
	RedirectURIs []string `json:"redirect_uris"`
	Scopes       []string `json:"scopes,omitempty"`
}

// CreateClientResponse carries the new client id, and the plaintext
// secret exactly once for confidential clients.
type CreateClientResponse struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// ClientSummary is a single entry of the list response.
type ClientSummary struct {
	ClientID     string    `json:"client_id"`
	Name         string    `json:"name"`
	RedirectURIs []string  `json:"redirect_uris"`
	Scopes       []string  `json:"scopes,omitempty"`
	Confidential bool      `json:"confidential"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListClientsResponse is the list response body.
type ListClientsResponse struct {
	Clients []ClientSummary `json:"clients"`
}

// HandleCreate handles POST /v1/clients.
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Client name is required")
		return
	}

	if len(req.RedirectURIs) == 0 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "At least one redirect URI is required")
		return
	}

	clientID, secret, err := h.ClientService.CreateClient(ctx, req.Name, req.Confidential, req.RedirectURIs, req.Scopes)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed client registration")
			return
		}
		log.Error("failed to create client", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create client")
		return
	}

	// The secret is only returned once at creation time.
	httpx.WriteJSON(w, http.StatusCreated, CreateClientResponse{
		ClientID:     clientID,
		ClientSecret: secret,
	})
}

// HandleList handles GET /v1/clients.
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	clients, err := h.ClientService.ListClients(ctx)
	if err != nil {
		log.Error("failed to list clients", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list clients")
		return
	}

	resp := ListClientsResponse{Clients: make([]ClientSummary, 0, len(clients))}
	for _, c := range clients {
		resp.Clients = append(resp.Clients, ClientSummary{
			ClientID:     c.ID,
			Name:         c.Name,
			RedirectURIs: c.RedirectURIs,
			Scopes:       c.Scopes,
			Confidential: c.SecretHash != "",
			CreatedAt:    c.CreatedAt,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleDelete handles DELETE /v1/clients/{id}.
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	clientID := r.PathValue("id")
	if clientID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Client id is required")
		return
	}

	if err := h.ClientService.DeleteClient(ctx, clientID); err != nil {
		if errors.Is(err, service.ErrClientNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Unknown client")
			return
		}
		log.Error("failed to delete client", "error", err, "client_id", clientID)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to delete client")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
