package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptor(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

	enc, err := NewEncryptor(key)
	require.NoError(t, err)

	t.Run("seal and open", func(t *testing.T) {
		plaintext := "Prefers short replies, hates small talk"
		sealed, err := enc.Seal(plaintext, "profile-1")
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, sealed)

		opened, err := enc.Open(sealed, "profile-1")
		require.NoError(t, err)
		assert.Equal(t, plaintext, opened)
	})

	t.Run("random nonce", func(t *testing.T) {
		ct1, _ := enc.Seal("same text", "p")
		ct2, _ := enc.Seal("same text", "p")
		assert.NotEqual(t, ct1, ct2)
	})

	t.Run("empty stays empty", func(t *testing.T) {
		sealed, err := enc.Seal("", "p")
		require.NoError(t, err)
		assert.Empty(t, sealed)

		opened, err := enc.Open("", "p")
		require.NoError(t, err)
		assert.Empty(t, opened)
	})

	t.Run("wrong binding fails", func(t *testing.T) {
		sealed, _ := enc.Seal("notes", "profile-1")
		_, err := enc.Open(sealed, "profile-2")
		assert.Error(t, err)
	})

	t.Run("invalid key length", func(t *testing.T) {
		_, err := NewEncryptor("abcd")
		assert.Error(t, err)
	})

	t.Run("invalid ciphertext", func(t *testing.T) {
		_, err := enc.Open("invalid-hex", "p")
		assert.Error(t, err)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		ct, _ := enc.Seal("test", "p")
		tampered := ct[:len(ct)-2] + "00"
		if tampered == ct {
			tampered = ct[:len(ct)-2] + "ff"
		}
		_, err := enc.Open(tampered, "p")
		assert.Error(t, err)
	})
}
