package user

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/go-faster/errors"
)

// CredentialHasher is the credential-store capability: it turns a secret
// into an opaque stored form and verifies a presented secret against it.
// The order domain never sees raw secrets.
type CredentialHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, stored string) error
}

// ErrBadCredentials is returned by Verify when the secret does not match.
var ErrBadCredentials = errors.New("invalid credentials")

// HMACHasher hashes secrets with HMAC-SHA256 under a server-side pepper and
// a per-secret random salt. The stored form is "salt$mac", both hex.
type HMACHasher struct {
	pepper []byte
}

// NewHMACHasher creates an HMACHasher with the given pepper.
func NewHMACHasher(pepper []byte) *HMACHasher {
	return &HMACHasher{pepper: pepper}
}

var _ CredentialHasher = (*HMACHasher)(nil)

// Hash produces the stored form for a secret.
func (h *HMACHasher) Hash(secret string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "generate salt")
	}
	mac := h.mac(salt, secret)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(mac), nil
}

// Verify checks a presented secret against the stored form using a
// constant-time comparison.
func (h *HMACHasher) Verify(secret, stored string) error {
	saltHex, macHex, ok := strings.Cut(stored, "$")
	if !ok {
		return ErrBadCredentials
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return ErrBadCredentials
	}
	want, err := hex.DecodeString(macHex)
	if err != nil {
		return ErrBadCredentials
	}
	got := h.mac(salt, secret)
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrBadCredentials
	}
	return nil
}

func (h *HMACHasher) mac(salt []byte, secret string) []byte {
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write(salt)
	mac.Write([]byte(secret))
	return mac.Sum(nil)
}
