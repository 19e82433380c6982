package registrations

import (
	"crypto/rand"
	"encoding/base64"
)

// tokenBytes is the entropy of a ticket token. The raw base64url string
// is the check-in credential, so it must be unguessable.
const tokenBytes = 32

// GenerateToken returns a new random ticket token.
func GenerateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
