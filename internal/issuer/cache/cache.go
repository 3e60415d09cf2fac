// Package cache provides the optional write-through fast path for issued
// authorization codes. The durable store remains the source of truth; a
// cache write failure never fails issuance, and entries expire on their
// own with the code's remaining validity.
package cache

import (
	"context"
	"errors"

	"github.com/quolldev/grantd/internal/issuer/domain"
)

// ErrNotFound reports that no cached record exists for the given key.
var ErrNotFound = errors.New("cache: not found")

// Codes is the secondary authorization-code cache. Entries are keyed by
// the client id concatenated with the plaintext code, which keeps code
// entries from colliding with unrelated token entries sharing the same
// cache namespace.
type Codes interface {
	// Put stores the record until the code's expiry. Best effort.
	Put(ctx context.Context, clientID, code string, record domain.AuthorizationCode) error

	// Get returns the cached record or ErrNotFound.
	Get(ctx context.Context, clientID, code string) (domain.AuthorizationCode, error)

	// Delete drops the cached record, if present.
	Delete(ctx context.Context, clientID, code string) error

	// Close releases any underlying resources.
	Close() error
}

// Noop is the disabled-cache implementation. Lookups always miss and
// writes succeed without storing anything.
type Noop struct{}

func (Noop) Put(context.Context, string, string, domain.AuthorizationCode) error { return nil }

func (Noop) Get(context.Context, string, string) (domain.AuthorizationCode, error) {
	return domain.AuthorizationCode{}, ErrNotFound
}

func (Noop) Delete(context.Context, string, string) error { return nil }

func (Noop) Close() error { return nil }
