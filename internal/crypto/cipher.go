// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

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

	"golang.org/x/crypto/argon2"
)

// ErrCiphertextTooShort is returned when a blob cannot even hold a nonce.
var ErrCiphertextTooShort = errors.New("ciphertext too short")

const (
	saltSize = 16
	keySize  = 32
)

type aesCipher struct {
	// Argon2id parameters, kept per instance so tests and low-memory
	// targets can tune them.
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
}

// NewCipher returns an AES-256-GCM [Cipher] with the OWASP-recommended
// Argon2id cost (1 iteration, 64 MiB, 4 threads).
func NewCipher() Cipher {
	return &aesCipher{
		argonTime:    1,
		argonMemory:  64 * 1024,
		argonThreads: 4,
	}
}

func (c *aesCipher) GenerateSalt() ([]byte, error) {
	return randomBytes(saltSize)
}

func (c *aesCipher) GenerateKey() ([]byte, error) {
	return randomBytes(keySize)
}

func (c *aesCipher) DeriveKey(masterPassword string, salt []byte) []byte {
	return argon2.IDKey([]byte(masterPassword), salt, c.argonTime, c.argonMemory, c.argonThreads, keySize)
}

func (c *aesCipher) WrapKey(key, ownerKey []byte) ([]byte, error) {
	blob, err := seal(ownerKey, key)
	if err != nil {
		return nil, fmt.Errorf("wrap key: %w", err)
	}
	return blob, nil
}

func (c *aesCipher) UnwrapKey(wrapped, ownerKey []byte) ([]byte, error) {
	key, err := open(ownerKey, wrapped)
	if err != nil {
		return nil, fmt.Errorf("unwrap key: %w", err)
	}
	return key, nil
}

func (c *aesCipher) EncryptData(data any, key []byte) (string, error) {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal data: %w", err)
	}

	blob, err := seal(key, plaintext)
	if err != nil {
		return "", fmt.Errorf("encrypt data: %w", err)
	}

	return base64.StdEncoding.EncodeToString(blob), nil
}

func (c *aesCipher) DecryptData(encryptedB64 string, key []byte, target any) error {
	blob, err := base64.StdEncoding.DecodeString(encryptedB64)
	if err != nil {
		return fmt.Errorf("decode base64: %w", err)
	}

	plaintext, err := open(key, blob)
	if err != nil {
		return fmt.Errorf("decrypt data: %w", err)
	}

	if err = json.Unmarshal(plaintext, target); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	return nil
}

// seal encrypts plaintext with key and returns nonce || ciphertext.
func seal(key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce, err := randomBytes(gcm.NonceSize())
	if err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// open splits blob into nonce and ciphertext and verifies the auth tag.
func open(key, blob []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return nil, ErrCiphertextTooShort
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}
