package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"regexp"
	"time"
)

// keyLength is the key size required for AES-256-GCM.
const keyLength = 32

// base64urlKeyPattern matches a 43-character URL-safe base64 string, the
// unpadded encoding of exactly 32 random bytes.
var base64urlKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{43}$`)

// Codec converts opaque bearer tokens to and from their storage-safe
// representation. Tokens are sealed in an AES-256-GCM envelope that carries
// its own expiry, so a stolen blob cannot be replayed past the expiry of the
// token it wraps.
type Codec struct {
	key []byte
}

// envelope is the plaintext sealed into the encrypted blob.
type envelope struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"exp"`
}

// NewCodec creates a codec keyed by the process-wide secret.
// The secret is normalized to a 32-byte key: a 43-character URL-safe base64
// secret is decoded as raw key material, any other string is truncated to 32
// bytes and right-padded with '0'. Normalization is deterministic, so the
// same secret always yields the same key across restarts.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Codec{key: normalizeKey(secret)}, nil
}

// normalizeKey derives the fixed-length AES key from an operator secret.
func normalizeKey(secret string) []byte {
	if base64urlKeyPattern.MatchString(secret) {
		if key, err := base64.RawURLEncoding.DecodeString(secret); err == nil && len(key) == keyLength {
			return key
		}
	}

	key := []byte(secret)
	if len(key) > keyLength {
		key = key[:keyLength]
	}
	for len(key) < keyLength {
		key = append(key, '0')
	}
	return key
}

// Encrypt seals a bearer token into a storage blob whose envelope expiry
// matches the token's exp claim. The blob is base64url-encoded nonce||ciphertext.
func (c *Codec) Encrypt(tok string, expiresAt time.Time) (string, error) {
	if tok == "" {
		return "", ErrInvalidToken
	}

	plaintext, err := json.Marshal(envelope{
		Token:     tok,
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// Decrypt opens a storage blob and returns the bearer token it wraps.
// Returns ErrInvalidToken if the blob is absent, malformed, tampered with,
// or the envelope expiry has passed.
func (c *Codec) Decrypt(blob string) (string, error) {
	if blob == "" {
		return "", ErrInvalidToken
	}

	ciphertext, err := base64.RawURLEncoding.DecodeString(blob)
	if err != nil {
		return "", ErrInvalidToken
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return "", ErrInvalidToken
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrInvalidToken
	}

	var env envelope
	if err := json.Unmarshal(plaintext, &env); err != nil {
		return "", ErrInvalidToken
	}

	if env.Token == "" || time.Now().After(time.Unix(env.ExpiresAt, 0)) {
		return "", ErrInvalidToken
	}

	return env.Token, nil
}
