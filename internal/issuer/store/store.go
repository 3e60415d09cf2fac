package store

import (
	"context"
	"errors"

	"github.com/quolldev/grantd/internal/issuer/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Clients() Clients
	AuthorizationCodes() AuthorizationCodes

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Clients interface {
	// GetClientByID fetches a registered client application.
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// ListClients returns all clients ordered by creation date (newest first).
	ListClients(ctx context.Context) ([]domain.Client, error)

	// CreateClient inserts a new client (id is ULID; secret_hash may be
	// empty for public clients).
	CreateClient(ctx context.Context, c domain.Client) error

	// DeleteClient removes a client; issued codes cascade per schema.
	DeleteClient(ctx context.Context, clientID string) error
}

type AuthorizationCodes interface {
	// CreateAuthorizationCode stores a freshly minted authorization code.
	// The insert must be durable before issuance reports success.
	CreateAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) error

	// GetAuthorizationCodeByHash fetches a code by its hashed value when
	// the exchange path redeems it.
	GetAuthorizationCodeByHash(ctx context.Context, hash string) (domain.AuthorizationCode, error)

	// MarkAuthorizationCodeUsed marks a code as consumed to prevent re-use.
	MarkAuthorizationCodeUsed(ctx context.Context, id string) error

	// CountAuthorizationCodes returns the total number of stored codes.
	CountAuthorizationCodes(ctx context.Context) (int64, error)

	// DeleteExpiredAuthorizationCodes removes codes past their expiry.
	DeleteExpiredAuthorizationCodes(ctx context.Context) error
}
