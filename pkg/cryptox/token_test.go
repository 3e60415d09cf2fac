package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	t.Run("rejects non-positive sizes", func(t *testing.T) {
		_, err := GenerateToken(0)
		require.Error(t, err)

		_, err = GenerateToken(-1)
		require.Error(t, err)
	})

	t.Run("produces distinct url-safe tokens", func(t *testing.T) {
		a, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		b, err := GenerateToken(TokenSize256)
		require.NoError(t, err)

		require.NotEqual(t, a, b)
		require.Len(t, a, 43) // 32 bytes base64url, no padding
		require.NotContains(t, a, "+")
		require.NotContains(t, a, "/")
		require.NotContains(t, a, "=")
	})
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	fp1 := FingerprintToken("some-code")
	fp2 := FingerprintToken("some-code")
	fp3 := FingerprintToken("other-code")

	require.Equal(t, fp1, fp2)
	require.NotEqual(t, fp1, fp3)
	require.Len(t, fp1, 43)
}
