package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testKey = "8b5f0d2aa31e4c77b0a1d9e64f28c35517d0be99aa43721fc86d5e00913ab2cd"

func TestTokenCipher_RoundTrip(t *testing.T) {
	c, err := NewTokenCipher(testKey)
	require.NoError(t, err)

	for _, plaintext := range []string{"", "tok", "EAAG...long.opaque.token-1234567890", strings.Repeat("x", 4096)} {
		enc, err := c.Encrypt(plaintext)
		require.NoError(t, err)
		if len(plaintext) >= 8 {
			require.NotContains(t, enc, plaintext[:8])
		}

		dec, err := c.Decrypt(enc)
		require.NoError(t, err)
		require.Equal(t, plaintext, dec)
	}
}

func TestTokenCipher_NonceVariesPerEncryption(t *testing.T) {
	c, err := NewTokenCipher(testKey)
	require.NoError(t, err)

	a, err := c.Encrypt("same-token")
	require.NoError(t, err)
	b, err := c.Encrypt("same-token")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestTokenCipher_TamperDetection(t *testing.T) {
	c, err := NewTokenCipher(testKey)
	require.NoError(t, err)

	enc, err := c.Encrypt("secret-token")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(enc)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01
	tampered := base64.StdEncoding.EncodeToString(raw)

	_, err = c.Decrypt(tampered)
	require.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestTokenCipher_RejectsGarbage(t *testing.T) {
	c, err := NewTokenCipher(testKey)
	require.NoError(t, err)

	for _, input := range []string{"", "not-base64!!!", base64.StdEncoding.EncodeToString([]byte("short"))} {
		_, err := c.Decrypt(input)
		require.ErrorIs(t, err, ErrInvalidCiphertext)
	}
}

func TestNewTokenCipher_BadKey(t *testing.T) {
	_, err := NewTokenCipher("zz")
	require.Error(t, err)

	_, err = NewTokenCipher("abcd")
	require.Error(t, err)
}
