package tracker

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"

	"github.com/m-mizutani/goerr/v2"
)

// GeneratePKCE returns a fresh PKCE verifier and its S256 challenge.
// The verifier is 32 random bytes in unpadded base64url, which yields
// 43 characters and satisfies the RFC 7636 length bounds.
func GeneratePKCE() (verifier, challenge string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", goerr.Wrap(err, "failed to generate PKCE verifier")
	}

	verifier = base64.RawURLEncoding.EncodeToString(buf)
	return verifier, Challenge(verifier), nil
}

// Challenge derives the S256 code challenge for a verifier
func Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
