// Package cryptox seals face descriptors with an authenticated cipher under a
// single process-wide key.
//
// A Sealer is built once at startup from configuration and is read-only
// afterwards, so it is safe for concurrent use.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/faceauth/internal/common"
	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the required key length in bytes.
const KeySize = 32

// Supported cipher names.
const (
	CipherAESGCM            = "aes-256-gcm"
	CipherXChaCha20Poly1305 = "xchacha20-poly1305"
)

// aesGCMNonceSize is 16 rather than the usual 12 so that records written by
// earlier deployments (16-byte IVs) stay readable.
const aesGCMNonceSize = 16

// Sealer encrypts and decrypts descriptor plaintext.
type Sealer struct {
	aead cipher.AEAD
	name string
}

// NewSealer builds a Sealer from a hex-encoded 32-byte key.
//
// An empty, non-hex or wrong-length key, or an unknown cipher name, yields an
// error wrapping common.ErrorConfiguration. Callers are expected to refuse to
// start in that case.
func NewSealer(keyHex string, cipherName string) (*Sealer, error) {
	if keyHex == "" {
		return nil, fmt.Errorf("%w: encryption key is not set", common.ErrorConfiguration)
	}

	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: encryption key is not valid hex: %v", common.ErrorConfiguration, err)
	}
	defer common.WipeByteArray(key)

	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: encryption key must be %d bytes, got %d", common.ErrorConfiguration, KeySize, len(key))
	}

	if cipherName == "" {
		cipherName = CipherAESGCM
	}

	var aead cipher.AEAD
	switch cipherName {
	case CipherAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorConfiguration, err)
		}
		aead, err = cipher.NewGCMWithNonceSize(block, aesGCMNonceSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorConfiguration, err)
		}
	case CipherXChaCha20Poly1305:
		aead, err = chacha20poly1305.NewX(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorConfiguration, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown cipher %q", common.ErrorConfiguration, cipherName)
	}

	return &Sealer{aead: aead, name: cipherName}, nil
}

// Cipher returns the name of the cipher in use.
func (s *Sealer) Cipher() string {
	return s.name
}

// Encrypt seals plaintext under a freshly generated random nonce.
// The nonce is never reused across calls.
func (s *Sealer) Encrypt(plaintext []byte) (Record, error) {
	nonce := common.GenerateRandByteArray(s.aead.NonceSize())

	sealed := s.aead.Seal(nil, nonce, plaintext, nil)

	tagStart := len(sealed) - s.aead.Overhead()
	return Record{
		IV:         nonce,
		Ciphertext: sealed[:tagStart:tagStart],
		Tag:        sealed[tagStart:],
	}, nil
}

// Decrypt opens r and returns the plaintext.
func (s *Sealer) Decrypt(r Record) ([]byte, error) {
	if len(r.IV) != s.aead.NonceSize() {
		return nil, fmt.Errorf("%w: iv must be %d bytes, got %d", ErrMalformedRecord, s.aead.NonceSize(), len(r.IV))
	}
	if len(r.Tag) != s.aead.Overhead() {
		return nil, fmt.Errorf("%w: tag must be %d bytes, got %d", ErrMalformedRecord, s.aead.Overhead(), len(r.Tag))
	}

	sealed := make([]byte, 0, len(r.Ciphertext)+len(r.Tag))
	sealed = append(sealed, r.Ciphertext...)
	sealed = append(sealed, r.Tag...)

	plaintext, err := s.aead.Open(nil, r.IV, sealed, nil)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}

// EncryptString seals plaintext and returns the storable record string.
func (s *Sealer) EncryptString(plaintext string) (string, error) {
	r, err := s.Encrypt([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

// DecryptString parses a stored record string and opens it.
func (s *Sealer) DecryptString(stored string) ([]byte, error) {
	r, err := ParseRecord(stored)
	if err != nil {
		return nil, err
	}
	return s.Decrypt(r)
}
