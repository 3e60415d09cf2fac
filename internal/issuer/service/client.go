package service

import (
	"context"
	"errors"
	"strings"

	"github.com/quolldev/grantd/internal/issuer/domain"
	"github.com/quolldev/grantd/internal/issuer/store"
	"github.com/quolldev/grantd/pkg/cryptox"
	"github.com/quolldev/grantd/pkg/idx"
	"github.com/quolldev/grantd/pkg/slogx"
)

var ErrClientNotFound = errors.New("client not found")

// ClientService manages the client application registry backing the
// issuance flow.
type ClientService struct {
	Store    store.Store
	Registry *ClientRegistry
}

// CreateClient registers a new OAuth2 client. If confidential is true, a
// secure secret is generated and returned in plaintext exactly once; only
// its hash is stored.
func (s *ClientService) CreateClient(
	ctx context.Context,
	name string,
	confidential bool,
	redirectURIs, scopes []string,
) (clientID string, plaintextSecret string, err error) {
	l := slogx.FromContext(ctx)

	if strings.TrimSpace(name) == "" {
		return "", "", wrapErr(ErrInvalidRequest, nil)
	}

	var secretHash string
	if confidential {
		secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			l.Error("failed to generate client secret", "error", err)
			return "", "", err
		}
		plaintextSecret = secret

		secretHash, err = cryptox.HashSecret(secret)
		if err != nil {
			l.Error("failed to hash client secret", "error", err)
			return "", "", err
		}
	}

	clientID = idx.New().String()

	err = s.Store.Clients().CreateClient(ctx, domain.Client{
		ID:           clientID,
		Name:         name,
		SecretHash:   secretHash,
		RedirectURIs: redirectURIs,
		Scopes:       scopes,
	})
	if err != nil {
		l.Error("failed to create client", "error", err)
		return "", "", err
	}

	l.Info("client created", "client_id", clientID, "name", name, "has_secret", confidential)
	return clientID, plaintextSecret, nil
}

// ListClients returns all registered clients.
func (s *ClientService) ListClients(ctx context.Context) ([]domain.Client, error) {
	return s.Store.Clients().ListClients(ctx)
}

// DeleteClient removes a client and drops its cached registry entry.
func (s *ClientService) DeleteClient(ctx context.Context, clientID string) error {
	l := slogx.FromContext(ctx)

	if _, err := s.Store.Clients().GetClientByID(ctx, clientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrClientNotFound
		}
		return err
	}

	if err := s.Store.Clients().DeleteClient(ctx, clientID); err != nil {
		l.Error("failed to delete client", "error", err, "client_id", clientID)
		return err
	}

	s.Registry.Invalidate(clientID)

	l.Info("client deleted", "client_id", clientID)
	return nil
}
