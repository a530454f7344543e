// Package crypto encrypts credentials stored in the config file, such as the
// Hugging Face token used for diarization.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize = 16
	// nonceSize is the AES-GCM nonce size
	nonceSize = 12
	// keySize is AES-256
	keySize    = 32
	iterations = 100000
)

var (
	// ErrInvalidPIN is returned when the PIN format is invalid
	ErrInvalidPIN = errors.New("PIN must be exactly 4 digits")

	// ErrDecryptionFailed is returned when decryption fails (wrong PIN or
	// corrupted data)
	ErrDecryptionFailed = errors.New("decryption failed: wrong PIN or corrupted data")

	// ErrInvalidData is returned when the encrypted blob cannot be parsed
	ErrInvalidData = errors.New("invalid encrypted data format")

	pinRegex = regexp.MustCompile(`^\d{4}$`)
)

// ValidatePIN checks that the PIN is exactly 4 digits.
func ValidatePIN(pin string) error {
	if !pinRegex.MatchString(pin) {
		return ErrInvalidPIN
	}
	return nil
}

func deriveKey(pin string, salt []byte) []byte {
	return pbkdf2.Key([]byte(pin), salt, iterations, keySize, sha256.New)
}

// Encrypt encrypts a credential with AES-256-GCM under a key derived from
// the PIN. The result is base64(salt + nonce + ciphertext).
func Encrypt(plaintext, pin string) (string, error) {
	if err := ValidatePIN(pin); err != nil {
		return "", err
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(pin, salt))
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create GCM: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	blob := make([]byte, 0, saltSize+nonceSize+len(sealed))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt reverses Encrypt, returning the original credential.
func Decrypt(encrypted, pin string) (string, error) {
	if err := ValidatePIN(pin); err != nil {
		return "", err
	}

	blob, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", ErrInvalidData
	}
	// salt + nonce + at least the 16-byte GCM tag
	if len(blob) < saltSize+nonceSize+16 {
		return "", ErrInvalidData
	}

	salt := blob[:saltSize]
	nonce := blob[saltSize : saltSize+nonceSize]
	sealed := blob[saltSize+nonceSize:]

	block, err := aes.NewCipher(deriveKey(pin, salt))
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}
