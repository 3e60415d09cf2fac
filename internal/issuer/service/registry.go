package service

import (
	"context"
	"errors"
	"sync"

	"github.com/quolldev/grantd/internal/issuer/domain"
	"github.com/quolldev/grantd/internal/issuer/store"
)

// ClientRegistry resolves client application metadata with a cache-aside
// read path: the in-process cache is checked first and the backing store
// is consulted, and the cache filled, only on a miss.
//
// The registry is constructed once at startup and shared by reference.
// Concurrent resolves for the same key may both hit the store; the
// resulting double fill is harmless since client metadata is immutable
// once loaded (last write wins).
type ClientRegistry struct {
	clients store.Clients

	mu    sync.RWMutex
	cache map[string]domain.Client
}

func NewClientRegistry(clients store.Clients) *ClientRegistry {
	return &ClientRegistry{
		clients: clients,
		cache:   make(map[string]domain.Client),
	}
}

// Resolve returns the client's registered metadata, or ErrUnknownClient
// if the client id is not registered.
func (r *ClientRegistry) Resolve(ctx context.Context, clientID string) (domain.Client, error) {
	r.mu.RLock()
	client, ok := r.cache[clientID]
	r.mu.RUnlock()
	if ok {
		return client, nil
	}

	client, err := r.clients.GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, wrapErr(ErrUnknownClient, nil)
		}
		return domain.Client{}, err
	}

	r.mu.Lock()
	r.cache[clientID] = client
	r.mu.Unlock()

	return client, nil
}

// Invalidate drops a cached entry, e.g. after the client is deleted.
func (r *ClientRegistry) Invalidate(clientID string) {
	r.mu.Lock()
	delete(r.cache, clientID)
	r.mu.Unlock()
}
