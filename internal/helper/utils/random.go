package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// RandomSecret returns n bytes of crypto/rand as a URL-safe string.
// Used as the throwaway credential for accounts created by Google
// sign-in, so the "every account has a password hash" invariant holds.
func RandomSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
