package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/m-mizutani/goerr/v2"
)

// Cipher encrypts and decrypts short secrets (OAuth tokens, PKCE
// verifiers) with AES-256-GCM. The key is derived once from a
// process-wide secret.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher derives an AES-256 key from the given secret via SHA-256
func NewCipher(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, goerr.New("encryption secret is required")
	}

	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create AES cipher")
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GCM")
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt returns the base64url encoded nonce-prefixed ciphertext
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", goerr.Wrap(err, "failed to generate nonce")
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Callers must treat a failure as "value
// absent" rather than a hard fault: a ciphertext written under a
// rotated secret is indistinguishable from corruption.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", goerr.Wrap(err, "failed to decode ciphertext")
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", goerr.New("ciphertext too short")
	}

	plaintext, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to decrypt")
	}

	return string(plaintext), nil
}
