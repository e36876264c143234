package cryptox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantLen int
	}{
		{"one byte", 1, 2},
		{"dummy secret", DummySecretBytes, 43},
		{"sixty four bytes", 64, 86},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := GenerateToken(tt.n)
			require.NoError(t, err)
			require.Len(t, tok, tt.wantLen)

			raw, err := base64.RawURLEncoding.DecodeString(tok)
			require.NoError(t, err, "token must be unpadded base64url")
			require.Len(t, raw, tt.n)
		})
	}

	t.Run("non positive length", func(t *testing.T) {
		for _, n := range []int{0, -1} {
			_, err := GenerateToken(n)
			require.Error(t, err)
		}
	})

	t.Run("tokens differ", func(t *testing.T) {
		seen := make(map[string]struct{}, 100)
		for range 100 {
			tok, err := GenerateToken(16)
			require.NoError(t, err)
			_, dup := seen[tok]
			require.False(t, dup)
			seen[tok] = struct{}{}
		}
	})

	t.Run("dummy secret fits bcrypt", func(t *testing.T) {
		tok, err := GenerateToken(DummySecretBytes)
		require.NoError(t, err)
		require.LessOrEqual(t, len(tok), MaxPasswordBytes)
	})
}
