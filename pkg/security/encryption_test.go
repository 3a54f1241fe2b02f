package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	enc, err := NewAESEncryptor(KeyConfig{Key: testKey})
	require.NoError(t, err)

	for _, plaintext := range []string{"", "Jordan Smith", "1990-04-12", strings.Repeat("x", 4096)} {
		ciphertext, err := enc.EncryptString(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, ciphertext)

		decrypted, err := enc.DecryptString(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	enc, err := NewAESEncryptor(KeyConfig{Key: testKey})
	require.NoError(t, err)

	a, err := enc.EncryptString("same input")
	require.NoError(t, err)
	b, err := enc.EncryptString("same input")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "a fresh nonce must produce a different ciphertext")
}

func TestNewAESEncryptorRejectsBadKeys(t *testing.T) {
	for _, key := range []string{"", "abcd", "zz", strings.Repeat("00", 16)} {
		_, err := NewAESEncryptor(KeyConfig{Key: key})
		assert.ErrorIs(t, err, ErrInvalidKeySize, "key %q", key)
	}
}

func TestDecryptRejectsTamperedInput(t *testing.T) {
	enc, err := NewAESEncryptor(KeyConfig{Key: testKey})
	require.NoError(t, err)

	_, err = enc.DecryptString("not base64!!")
	assert.ErrorIs(t, err, ErrDecryption)

	_, err = enc.DecryptString("c2hvcnQ=")
	assert.ErrorIs(t, err, ErrDecryption)
}
