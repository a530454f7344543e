package crypto

import (
	"errors"
	"testing"
)

func TestValidatePIN(t *testing.T) {
	valid := []string{"0000", "1234", "9999"}
	for _, pin := range valid {
		if err := ValidatePIN(pin); err != nil {
			t.Errorf("ValidatePIN(%q) = %v, want nil", pin, err)
		}
	}

	invalid := []string{"", "123", "12345", "abcd", "12a4", " 1234"}
	for _, pin := range invalid {
		if !errors.Is(ValidatePIN(pin), ErrInvalidPIN) {
			t.Errorf("ValidatePIN(%q) should fail", pin)
		}
	}
}

func TestEncryptDecrypt(t *testing.T) {
	token := "hf_abcdefghijklmnopqrstuvwxyz123456"

	encrypted, err := Encrypt(token, "1234")
	if err != nil {
		t.Fatal(err)
	}
	if encrypted == token {
		t.Fatal("ciphertext equals plaintext")
	}

	decrypted, err := Decrypt(encrypted, "1234")
	if err != nil {
		t.Fatal(err)
	}
	if decrypted != token {
		t.Errorf("Decrypt() = %q, want %q", decrypted, token)
	}
}

func TestDecryptWrongPIN(t *testing.T) {
	encrypted, err := Encrypt("secret", "1234")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decrypt(encrypted, "4321"); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestDecryptGarbage(t *testing.T) {
	if _, err := Decrypt("not base64!!!", "1234"); !errors.Is(err, ErrInvalidData) {
		t.Errorf("expected ErrInvalidData, got %v", err)
	}
	if _, err := Decrypt("AAAA", "1234"); !errors.Is(err, ErrInvalidData) {
		t.Errorf("expected ErrInvalidData for short blob, got %v", err)
	}
}

func TestEncryptIsSalted(t *testing.T) {
	a, err := Encrypt("secret", "1234")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encrypt("secret", "1234")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two encryptions of the same plaintext should differ")
	}
}
