// Package cipher encrypts agent traffic.
//
// AES256 messages are base64(IV | AES-256-CBC(PKCS7(plaintext)) | HMAC-SHA256(IV | ciphertext)),
// both the cipher and the MAC use the callback 32 byte key.
package cipher

import (
	"bytes"
	"crypto/aes"
	stdcipher "crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/slok/opsdesk/internal/model"
)

const (
	keySize = 32
	macSize = sha256.Size
)

// Cipher encrypts and decrypts agent messages.
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(message []byte) ([]byte, error)
}

// ForCallback returns the cipher configured for a callback, nil when the callback
// traffic is not encrypted.
func ForCallback(cb model.Callback) (Cipher, error) {
	switch cb.EncryptionType {
	case "":
		return nil, nil
	case model.EncryptionTypeAES256:
		key, err := base64.StdEncoding.DecodeString(cb.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("callback key is not base64: %w", model.ErrNotValid)
		}
		return NewAES256(key)
	default:
		return nil, fmt.Errorf("encryption type %q: %w", cb.EncryptionType, model.ErrNotValid)
	}
}

type aes256 struct {
	block stdcipher.Block
	key   []byte
}

// NewAES256 returns an AES256 cipher for a 32 byte key.
func NewAES256(key []byte) (Cipher, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d: %w", keySize, len(key), model.ErrNotValid)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("could not create cipher: %w", err)
	}
	return aes256{block: block, key: key}, nil
}

// GenerateKey returns a new random base64 encoded AES256 key.
func GenerateKey() (string, error) {
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("could not generate key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

func (a aes256) Encrypt(plaintext []byte) ([]byte, error) {
	padded := pkcs7Pad(plaintext, aes.BlockSize)

	msg := make([]byte, aes.BlockSize+len(padded), aes.BlockSize+len(padded)+macSize)
	iv := msg[:aes.BlockSize]
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("could not generate iv: %w", err)
	}
	stdcipher.NewCBCEncrypter(a.block, iv).CryptBlocks(msg[aes.BlockSize:], padded)
	msg = append(msg, a.mac(msg)...)

	out := make([]byte, base64.StdEncoding.EncodedLen(len(msg)))
	base64.StdEncoding.Encode(out, msg)
	return out, nil
}

func (a aes256) Decrypt(message []byte) ([]byte, error) {
	msg := make([]byte, base64.StdEncoding.DecodedLen(len(message)))
	n, err := base64.StdEncoding.Decode(msg, message)
	if err != nil {
		return nil, fmt.Errorf("message is not base64: %w", model.ErrNotValid)
	}
	msg = msg[:n]

	if len(msg) < 2*aes.BlockSize+macSize || (len(msg)-macSize)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("message has invalid size: %w", model.ErrNotValid)
	}
	body, mac := msg[:len(msg)-macSize], msg[len(msg)-macSize:]
	if !hmac.Equal(mac, a.mac(body)) {
		return nil, fmt.Errorf("message authentication failed: %w", model.ErrNotValid)
	}

	iv, ct := body[:aes.BlockSize], body[aes.BlockSize:]
	plain := make([]byte, len(ct))
	stdcipher.NewCBCDecrypter(a.block, iv).CryptBlocks(plain, ct)

	return pkcs7Unpad(plain, aes.BlockSize)
}

func (a aes256) mac(b []byte) []byte {
	h := hmac.New(sha256.New, a.key)
	h.Write(b)
	return h.Sum(nil)
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(bytes.Clone(b), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, fmt.Errorf("invalid padding: %w", model.ErrNotValid)
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, fmt.Errorf("invalid padding: %w", model.ErrNotValid)
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, fmt.Errorf("invalid padding: %w", model.ErrNotValid)
		}
	}
	return b[:len(b)-n], nil
}
