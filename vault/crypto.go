package vault

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var fekInfo = []byte("passkeeper vault v1")

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func randBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}

func DefaultKDFParams() *KDFParams { return &KDFParams{Time: 3, Memory: 256 * 1024, Threads: 1} }

// NewKDFParams copies the cost settings of base and attaches a fresh salt.
func NewKDFParams(base *KDFParams) (*KDFParams, error) {
	if base == nil {
		base = DefaultKDFParams()
	}
	salt, err := randBytes(SaltLen)
	if err != nil {
		return nil, err
	}
	return &KDFParams{Time: base.Time, Memory: base.Memory, Threads: base.Threads, Salt: salt}, nil
}

// DeriveKey stretches password with argon2id and expands the result with
// HKDF-SHA256 into the file encryption key. password is wiped.
func DeriveKey(password []byte, params *KDFParams) ([]byte, error) {
	defer zero(password)
	if params == nil || len(params.Salt) == 0 {
		return nil, fmt.Errorf("derive key: missing salt")
	}
	if params.Time == 0 || params.Memory == 0 || params.Threads == 0 {
		return nil, fmt.Errorf("derive key: invalid argon2 parameters")
	}

	master := argon2.IDKey(password, params.Salt, params.Time, params.Memory, params.Threads, MasterKeyLen)
	defer zero(master)

	h := hkdf.New(sha256.New, master, params.Salt, fekInfo)
	fek := make([]byte, FEKLen)
	if _, err := io.ReadFull(h, fek); err != nil {
		zero(fek)
		return nil, err
	}
	return fek, nil
}

// Cipher performs authenticated encryption under a key derived from the
// master password. The key lives in a memguard enclave between calls.
type Cipher struct {
	key *memguard.Enclave
}

func NewCipher(password []byte, params *KDFParams) (*Cipher, error) {
	fek, err := DeriveKey(password, params)
	if err != nil {
		return nil, err
	}
	// NewEnclave wipes fek.
	return &Cipher{key: memguard.NewEnclave(fek)}, nil
}

func (c *Cipher) aead() (cipher.AEAD, error) {
	if c == nil || c.key == nil {
		return nil, ErrVaultLocked
	}
	buf, err := c.key.Open()
	if err != nil {
		return nil, err
	}
	defer buf.Destroy()
	return chacha20poly1305.New(buf.Bytes())
}

// Encrypt seals plaintext under a fresh random nonce and returns
// base64(nonce || ciphertext).
func (c *Cipher) Encrypt(plaintext, aad []byte) (string, error) {
	aead, err := c.aead()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncryption, err)
	}
	nonce, err := randBytes(aead.NonceSize())
	if err != nil {
		return "", fmt.Errorf("%w: nonce: %w", ErrEncryption, err)
	}

	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, plaintext, aad)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. Any tag mismatch is reported as
// ErrAuthenticationFailed.
func (c *Cipher) Decrypt(blob string, aad []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(blob))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCiphertext, err)
	}
	if len(raw) < NonceLen {
		return nil, ErrMalformedCiphertext
	}

	aead, err := c.aead()
	if err != nil {
		return nil, err
	}
	nonce, ct := raw[:NonceLen], raw[NonceLen:]
	pt, err := aead.Open(nil, nonce, ct, aad)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	if !utf8.Valid(pt) {
		zero(pt)
		return nil, ErrEncoding
	}
	return pt, nil
}

// Destroy drops the key. The cipher is unusable afterwards.
func (c *Cipher) Destroy() {
	if c != nil {
		c.key = nil
	}
}

// Zero securely wipes a byte slice from memory.
func Zero(b []byte) {
	zero(b)
}
