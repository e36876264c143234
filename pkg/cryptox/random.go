package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// DummySecretBytes seeds the dummy hash. 32 bytes encode to 43 characters,
// inside the bcrypt input limit.
const DummySecretBytes = 32

// GenerateToken returns n random bytes as unpadded base64url.
func GenerateToken(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("cryptox: token length must be positive, got %d", n)
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
