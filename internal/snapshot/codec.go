// Package snapshot encrypts and decrypts the denormalized per-entry card
// snapshot stored alongside each binder row. The snapshot is an optimization
// only: every decode failure is a cache miss, never an error, and the system
// behaves identically with the codec disabled.
package snapshot

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
)

const (
	nonceSize = 12
	tagSize   = 16
)

// DevFallbackSecret is used when no secret is configured. Kept for parity with
// existing deployments; startup logs a warning when it is in effect.
const DevFallbackSecret = "dev-placeholder-secret-key"

// Codec turns a presented card into an opaque token and back. Implementations
// are either the AES-GCM codec or Disabled; selecting one up front keeps the
// ledger logic identical regardless of schema version.
type Codec interface {
	// Encrypt serializes and seals the card. Returns the opaque token.
	Encrypt(card *domain.BinderCard) (string, error)
	// Decrypt opens a token. Returns (nil, false) on any malformed or
	// tampered input; the caller treats that as a cache miss and falls
	// back to the live join.
	Decrypt(token string) (*domain.BinderCard, bool)
	// Enabled reports whether Encrypt produces usable tokens.
	Enabled() bool
}

// New creates an AES-256-GCM codec keyed by the SHA-256 digest of secret.
// An empty secret falls back to DevFallbackSecret.
func New(secret string) Codec {
	if secret == "" {
		secret = DevFallbackSecret
	}
	key := sha256.Sum256([]byte(secret))
	return &aesCodec{key: key[:]}
}

// Disabled is the no-op variant: Encrypt fails, Decrypt always misses.
// Used when the secure_payload column is absent or caching is turned off.
var Disabled Codec = disabledCodec{}

type aesCodec struct {
	key []byte
}

func (c *aesCodec) Enabled() bool { return true }

// Encrypt produces base64(nonce ‖ tag ‖ ciphertext). Go's GCM appends the tag
// to the ciphertext, so the sealed output is re-split to keep the stored token
// layout compatible with rows written before this service.
func (c *aesCodec) Encrypt(card *domain.BinderCard) (string, error) {
	plaintext, err := json.Marshal(card)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	aead, err := c.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("snapshot nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, plaintext, nil)
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	token := make([]byte, 0, nonceSize+tagSize+len(ciphertext))
	token = append(token, nonce...)
	token = append(token, tag...)
	token = append(token, ciphertext...)

	return base64.StdEncoding.EncodeToString(token), nil
}

func (c *aesCodec) Decrypt(token string) (*domain.BinderCard, bool) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil || len(raw) < nonceSize+tagSize {
		return nil, false
	}

	aead, err := c.aead()
	if err != nil {
		return nil, false
	}

	nonce := raw[:nonceSize]
	tag := raw[nonceSize : nonceSize+tagSize]
	ciphertext := raw[nonceSize+tagSize:]

	// Reassemble ciphertext‖tag for GCM open; a tag mismatch fails closed.
	sealed := make([]byte, 0, len(ciphertext)+tagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, false
	}

	var card domain.BinderCard
	if err := json.Unmarshal(plaintext, &card); err != nil {
		return nil, false
	}
	return &card, true
}

func (c *aesCodec) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, fmt.Errorf("snapshot cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("snapshot gcm: %w", err)
	}
	return aead, nil
}

type disabledCodec struct{}

func (disabledCodec) Enabled() bool { return false }

func (disabledCodec) Encrypt(*domain.BinderCard) (string, error) {
	return "", fmt.Errorf("snapshot codec disabled")
}

func (disabledCodec) Decrypt(string) (*domain.BinderCard, bool) {
	return nil, false
}
