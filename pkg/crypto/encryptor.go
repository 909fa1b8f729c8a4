package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const keyLength = 32

// ErrDecrypt is returned when a token is malformed or was produced with
// different key material.
var ErrDecrypt = errors.New("crypto: cannot decrypt token")

// Encryptor performs symmetric encryption of serializable payloads into
// opaque base64 tokens. Each call uses a fresh random nonce, so encrypting
// the same plaintext twice yields different tokens.
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor derives a fixed-length key from the configured secret. It
// fails fast when the secret is shorter than the required key length.
func NewEncryptor(secret string) (*Encryptor, error) {
	if len(secret) < keyLength {
		return nil, fmt.Errorf("crypto: secret must be at least %d bytes, got %d", keyLength, len(secret))
	}
	block, err := aes.NewCipher([]byte(secret)[:keyLength])
	if err != nil {
		return nil, fmt.Errorf("crypto: init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: init gcm: %w", err)
	}
	return &Encryptor{aead: aead}, nil
}

// Encrypt seals the plaintext and returns base64(nonce || ciphertext).
func (e *Encryptor) Encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypto: generate nonce: %w", err)
	}
	sealed := e.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. It returns ErrDecrypt for corrupt base64, short
// tokens and authentication failures alike.
func (e *Encryptor) Decrypt(token string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	nonceSize := e.aead.NonceSize()
	if len(raw) < nonceSize {
		return nil, fmt.Errorf("%w: token too short", ErrDecrypt)
	}
	plaintext, err := e.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return plaintext, nil
}

// EncryptJSON serializes the value and encrypts the resulting bytes.
func (e *Encryptor) EncryptJSON(value interface{}) (string, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("crypto: marshal payload: %w", err)
	}
	return e.Encrypt(payload)
}

// DecryptJSON decrypts the token and deserializes into dest.
func (e *Encryptor) DecryptJSON(token string, dest interface{}) error {
	plaintext, err := e.Decrypt(token)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plaintext, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return nil
}
