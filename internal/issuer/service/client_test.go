package service

import (
	"context"
	"testing"

	"github.com/quolldev/grantd/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func newClientService(t *testing.T) (*ClientService, *harness) {
	t.Helper()

	h := newHarness(t, nil)
	return &ClientService{Store: h.store, Registry: h.svc.Registry}, h
}

func TestCreateClient(t *testing.T) {
	ctx := context.Background()

	t.Run("confidential client gets a verifiable secret", func(t *testing.T) {
		svc, h := newClientService(t)

		clientID, secret, err := svc.CreateClient(ctx, "backend", true,
			[]string{"https://backend.example/cb"}, []string{"orders:write"})
		require.NoError(t, err)
		require.NotEmpty(t, clientID)
		require.NotEmpty(t, secret)

		stored, err := h.store.Clients().GetClientByID(ctx, clientID)
		require.NoError(t, err)
		require.NotEqual(t, secret, stored.SecretHash)
		require.NoError(t, cryptox.VerifySecret(secret, stored.SecretHash))
		require.Error(t, cryptox.VerifySecret("wrong", stored.SecretHash))
	})

	t.Run("public client has no secret", func(t *testing.T) {
		svc, h := newClientService(t)

		clientID, secret, err := svc.CreateClient(ctx, "spa", false,
			[]string{"https://spa.example/cb"}, nil)
		require.NoError(t, err)
		require.Empty(t, secret)

		stored, err := h.store.Clients().GetClientByID(ctx, clientID)
		require.NoError(t, err)
		require.Empty(t, stored.SecretHash)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		svc, _ := newClientService(t)

		_, _, err := svc.CreateClient(ctx, "  ", false, nil, nil)
		require.ErrorIs(t, err, ErrInvalidRequest)
	})
}

func TestDeleteClient(t *testing.T) {
	ctx := context.Background()
	svc, _ := newClientService(t)

	clientID, _, err := svc.CreateClient(ctx, "doomed", false,
		[]string{"https://doomed.example/cb"}, nil)
	require.NoError(t, err)

	// Warm the registry so delete has something to invalidate.
	_, err = svc.Registry.Resolve(ctx, clientID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteClient(ctx, clientID))

	_, err = svc.Registry.Resolve(ctx, clientID)
	require.ErrorIs(t, err, ErrUnknownClient)

	require.ErrorIs(t, svc.DeleteClient(ctx, clientID), ErrClientNotFound)
}

func TestListClients(t *testing.T) {
	ctx := context.Background()
	svc, _ := newClientService(t)

	for _, name := range []string{"alpha", "beta"} {
		_, _, err := svc.CreateClient(ctx, name, false, nil, nil)
		require.NoError(t, err)
	}

	clients, err := svc.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 2)
}
