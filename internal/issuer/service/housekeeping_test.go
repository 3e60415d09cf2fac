package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/quolldev/grantd/internal/issuer/domain"
	"github.com/quolldev/grantd/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingRemovesExpiredCodes(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	client := h.seedClient(t)

	seed := func(t *testing.T, expiresAt time.Time) {
		t.Helper()
		code, err := cryptox.GenerateToken(cryptox.TokenSize128)
		require.NoError(t, err)
		record := domain.AuthorizationCode{
			ID:          newCodeID(),
			CodeHash:    cryptox.FingerprintToken(code),
			UserID:      "user-1",
			ClientID:    client.ID,
			RedirectURI: client.RedirectURIs[0],
			IssuedAt:    time.Now().UTC().Add(-time.Hour),
			ExpiresAt:   expiresAt,
		}
		require.NoError(t, h.store.AuthorizationCodes().CreateAuthorizationCode(ctx, record))
	}

	seed(t, time.Now().UTC().Add(-time.Minute)) // expired
	seed(t, time.Now().UTC().Add(-time.Second)) // expired
	seed(t, time.Now().UTC().Add(time.Hour))    // live

	hk := NewHousekeepingService(h.store, slog.Default(), time.Hour)
	hk.Start()
	defer hk.Stop()

	// Startup runs a cleanup immediately.
	require.Eventually(t, func() bool {
		n, err := h.store.AuthorizationCodes().CountAuthorizationCodes(ctx)
		return err == nil && n == 1
	}, time.Second, 10*time.Millisecond)
}

func TestHousekeepingDefaultInterval(t *testing.T) {
	h := newHarness(t, nil)

	hk := NewHousekeepingService(h.store, slog.Default(), 0)
	require.Equal(t, time.Hour, hk.Interval)
}
