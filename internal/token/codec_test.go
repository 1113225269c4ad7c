package token

import (
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodec(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty secret", func(t *testing.T) {
		t.Parallel()

		_, err := NewCodec("")
		require.ErrorIs(t, err, ErrNoSecret)
	})

	t.Run("accepts base64url secret", func(t *testing.T) {
		t.Parallel()

		raw := make([]byte, 32)
		_, err := rand.Read(raw)
		require.NoError(t, err)

		c, err := NewCodec(base64.RawURLEncoding.EncodeToString(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, c.key)
	})

	t.Run("pads short secret", func(t *testing.T) {
		t.Parallel()

		c, err := NewCodec("short-secret")
		require.NoError(t, err)
		assert.Len(t, c.key, 32)
		assert.Equal(t, []byte("short-secret00000000000000000000"), c.key)
	})

	t.Run("truncates long secret", func(t *testing.T) {
		t.Parallel()

		c, err := NewCodec("this-secret-is-definitely-longer-than-thirty-two-bytes")
		require.NoError(t, err)
		assert.Len(t, c.key, 32)
		assert.Equal(t, []byte("this-secret-is-definitely-longer"), c.key)
	})

	t.Run("same secret yields same key", func(t *testing.T) {
		t.Parallel()

		a, err := NewCodec("test-secret-32-bytes-padded")
		require.NoError(t, err)
		b, err := NewCodec("test-secret-32-bytes-padded")
		require.NoError(t, err)
		assert.Equal(t, a.key, b.key)
	})
}

func TestCodec_EncryptDecrypt(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec("test-secret")
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		blob, err := codec.Encrypt("bearer-token-value", time.Now().Add(time.Hour))
		require.NoError(t, err)
		require.NotEmpty(t, blob)
		assert.NotContains(t, blob, "bearer-token-value")

		got, err := codec.Decrypt(blob)
		require.NoError(t, err)
		assert.Equal(t, "bearer-token-value", got)
	})

	t.Run("rejects empty token", func(t *testing.T) {
		t.Parallel()

		_, err := codec.Encrypt("", time.Now().Add(time.Hour))
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("nondeterministic output", func(t *testing.T) {
		t.Parallel()

		exp := time.Now().Add(time.Hour)
		a, err := codec.Encrypt("tok", exp)
		require.NoError(t, err)
		b, err := codec.Encrypt("tok", exp)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("rejects expired envelope", func(t *testing.T) {
		t.Parallel()

		blob, err := codec.Encrypt("tok", time.Now().Add(-time.Minute))
		require.NoError(t, err)

		_, err = codec.Decrypt(blob)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects empty blob", func(t *testing.T) {
		t.Parallel()

		_, err := codec.Decrypt("")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects malformed blob", func(t *testing.T) {
		t.Parallel()

		_, err := codec.Decrypt("not base64!!")
		require.ErrorIs(t, err, ErrInvalidToken)

		_, err = codec.Decrypt("dG9vc2hvcnQ")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects tampered blob", func(t *testing.T) {
		t.Parallel()

		blob, err := codec.Encrypt("tok", time.Now().Add(time.Hour))
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(blob)
		require.NoError(t, err)
		raw[len(raw)-1] ^= 0xff

		_, err = codec.Decrypt(base64.RawURLEncoding.EncodeToString(raw))
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("round trip works for both secret shapes", func(t *testing.T) {
		t.Parallel()

		raw := make([]byte, 32)
		_, err := rand.Read(raw)
		require.NoError(t, err)

		secrets := []string{
			base64.RawURLEncoding.EncodeToString(raw),
			"an arbitrary operator passphrase of uncommon length",
		}
		for _, secret := range secrets {
			c, err := NewCodec(secret)
			require.NoError(t, err)

			blob, err := c.Encrypt("tok", time.Now().Add(time.Hour))
			require.NoError(t, err)

			got, err := c.Decrypt(blob)
			require.NoError(t, err)
			assert.Equal(t, "tok", got)
		}
	})

	t.Run("rejects blob from another key", func(t *testing.T) {
		t.Parallel()

		other, err := NewCodec("a-different-secret")
		require.NoError(t, err)

		blob, err := other.Encrypt("tok", time.Now().Add(time.Hour))
		require.NoError(t, err)

		_, err = codec.Decrypt(blob)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}
