package metadata

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const keyInfo = "saleor-stripe-app metadata"

type EncryptedManager struct {
	store Store
	aead  cipher.AEAD
}

func NewEncryptedManager(store Store, secretKey string) (*EncryptedManager, error) {
	if secretKey == "" {
		return nil, errors.New("metadata secret key is empty")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secretKey), nil, []byte(keyInfo)), key); err != nil {
		return nil, errors.Wrap(err, "deriving metadata key")
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(err, "creating metadata cipher")
	}

	return &EncryptedManager{store: store, aead: aead}, nil
}

func (m *EncryptedManager) Get(ctx context.Context, tenant, key string) (string, error) {
	value, err := m.store.Get(ctx, tenant, key)
	if err != nil || value == "" {
		return "", err
	}
	return m.decrypt(value, associatedData(tenant, key))
}

func (m *EncryptedManager) Set(ctx context.Context, tenant, key, value string) error {
	encrypted, err := m.encrypt(value, associatedData(tenant, key))
	if err != nil {
		return err
	}
	return m.store.Set(ctx, tenant, key, encrypted)
}

func (m *EncryptedManager) Delete(ctx context.Context, tenant, key string) error {
	return m.store.Delete(ctx, tenant, key)
}

// encrypt returns base64(nonce || ciphertext).
func (m *EncryptedManager) encrypt(plaintext string, ad []byte) (string, error) {
	nonce := make([]byte, m.aead.NonceSize(), m.aead.NonceSize()+len(plaintext)+m.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", errors.Wrap(err, "generating nonce")
	}

	sealed := m.aead.Seal(nonce, nonce, []byte(plaintext), ad)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (m *EncryptedManager) decrypt(encoded string, ad []byte) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.Wrap(err, "decoding encrypted metadata")
	}
	if len(sealed) < m.aead.NonceSize() {
		return "", errors.New("encrypted metadata is too short")
	}

	nonce, ciphertext := sealed[:m.aead.NonceSize()], sealed[m.aead.NonceSize():]
	plaintext, err := m.aead.Open(nil, nonce, ciphertext, ad)
	if err != nil {
		return "", errors.Wrap(err, "decrypting metadata")
	}
	return string(plaintext), nil
}

func associatedData(tenant, key string) []byte {
	return []byte(tenant + "\x00" + key)
}
