package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/crypto/argon2"
)

// lightweight at-rest obfuscation for values kept in the local database (AES-GCM).
// Not a replacement for OS keychains but avoids a plain-text session token on disk.

var salt = []byte("coinfeed/secrets/v1")

// ErrMalformed is returned by Open for values that were not produced by Seal with the same key.
var ErrMalformed = errors.New("secrets: malformed sealed value")

// Sealer encrypts and decrypts short string values.
type Sealer struct {
	gcm cipher.AEAD
}

// NewSealer derives a 256-bit key from passphrase with argon2id.
func NewSealer(passphrase string) (*Sealer, error) {
	key := argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, 32)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{gcm: gcm}, nil
}

// DefaultPassphrase binds sealed values to the current OS user.
func DefaultPassphrase() string {
	return fmt.Sprintf("coinfeed-%s-%s", runtime.GOOS, os.Getenv("USER"))
}

// Seal returns base64(nonce || ciphertext).
func (s *Sealer) Seal(plain string) (string, error) {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ct := s.gcm.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(ct), nil
}

func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(raw) < s.gcm.NonceSize() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrMalformed)
	}
	nonce := raw[:s.gcm.NonceSize()]
	body := raw[s.gcm.NonceSize():]
	pt, err := s.gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return string(pt), nil
}
