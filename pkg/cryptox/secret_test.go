package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifySecret(t *testing.T) {
	t.Parallel()

	hash, err := HashSecret("hunter2")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.NoError(t, VerifySecret("hunter2", hash))
	require.Error(t, VerifySecret("wrong", hash))
}

func TestVerifySecretRejectsMalformedHashes(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA",
	}

	for _, c := range cases {
		require.Error(t, VerifySecret("secret", c), "hash %q should be rejected", c)
	}
}

func TestHashSecretSaltsEveryCall(t *testing.T) {
	t.Parallel()

	h1, err := HashSecret("same-secret")
	require.NoError(t, err)
	h2, err := HashSecret("same-secret")
	require.NoError(t, err)

	require.NotEqual(t, h1, h2)
	require.NoError(t, VerifySecret("same-secret", h1))
	require.NoError(t, VerifySecret("same-secret", h2))
}
