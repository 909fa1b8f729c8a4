package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestEncryptorRoundTrip(t *testing.T) {
	enc, err := NewEncryptor(testSecret)
	require.NoError(t, err)

	token, err := enc.Encrypt([]byte("hemligt meddelande"))
	require.NoError(t, err)

	plaintext, err := enc.Decrypt(token)
	require.NoError(t, err)
	assert.Equal(t, "hemligt meddelande", string(plaintext))
}

func TestEncryptorFreshNoncePerCall(t *testing.T) {
	enc, err := NewEncryptor(testSecret)
	require.NoError(t, err)

	first, err := enc.Encrypt([]byte("same payload"))
	require.NoError(t, err)
	second, err := enc.Encrypt([]byte("same payload"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestEncryptorShortSecretRejected(t *testing.T) {
	_, err := NewEncryptor("too-short")
	require.Error(t, err)
}

func TestEncryptorDecryptFailures(t *testing.T) {
	enc, err := NewEncryptor(testSecret)
	require.NoError(t, err)

	_, err = enc.Decrypt("not base64!!!")
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = enc.Decrypt("c2hvcnQ=")
	assert.ErrorIs(t, err, ErrDecrypt)

	token, err := enc.Encrypt([]byte("payload"))
	require.NoError(t, err)

	other, err := NewEncryptor(strings.ToUpper(testSecret))
	require.NoError(t, err)
	_, err = other.Decrypt(token)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestEncryptorJSONRoundTrip(t *testing.T) {
	enc, err := NewEncryptor(testSecret)
	require.NoError(t, err)

	type payload struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
	token, err := enc.EncryptJSON(payload{Name: "Anna", Message: "Hej!"})
	require.NoError(t, err)

	var out payload
	require.NoError(t, enc.DecryptJSON(token, &out))
	assert.Equal(t, "Anna", out.Name)
	assert.Equal(t, "Hej!", out.Message)
}
