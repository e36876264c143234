package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"max length password", strings.Repeat("a", MaxPasswordBytes)},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$2a$10$"), "hash should be bcrypt at cost 10")

			cost, err := bcrypt.Cost([]byte(hash))
			require.NoError(t, err)
			require.Equal(t, Cost, cost)
		})
	}
}

func TestHashPassword_TooLong(t *testing.T) {
	hash, err := HashPassword(strings.Repeat("a", MaxPasswordBytes+1))
	require.ErrorIs(t, err, ErrPasswordTooLong)
	require.Empty(t, hash)
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	password := "samepassword"

	hash1, err := HashPassword(password)
	require.NoError(t, err)
	hash2, err := HashPassword(password)
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")

	for _, h := range []string{hash1, hash2} {
		ok, err := VerifyPassword(password, h)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	hash, err := HashPassword("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{
		"wrong-password",
		"Correct-Password",
		"correct-password ",
		"",
		"correct-passwor",
		strings.Repeat("x", 10000),
	} {
		ok, err := VerifyPassword(wrong, hash)
		require.NoError(t, err, "a mismatch is not an error")
		require.False(t, ok)
	}
}

func TestVerifyPassword_InvalidHashFormat(t *testing.T) {
	for name, invalid := range map[string]string{
		"empty hash":     "",
		"argon2 hash":    "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"truncated hash": "$2a$10$abc",
	} {
		t.Run(name, func(t *testing.T) {
			ok, err := VerifyPassword("test-password", invalid)
			require.Error(t, err)
			require.False(t, ok)
		})
	}
}

func TestNewDummyHash(t *testing.T) {
	dummy, err := NewDummyHash()
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(dummy))
	require.NoError(t, err)
	require.Equal(t, Cost, cost, "dummy must cost the same as real hashes")

	ok, err := VerifyPassword("anything", dummy)
	require.NoError(t, err)
	require.False(t, ok)
}
