package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

// tokenBytes is the entropy of an issued session token. 32 bytes of
// randomness, base64url on the wire.
const tokenBytes = 32

var ErrEmptyToken = errors.New("token and hash must be non-empty")

// TokenPair couples the opaque token handed to the client with the form
// kept in storage. The raw token never touches the database; a leaked
// sessions table yields nothing usable.
type TokenPair struct {
	Token string // handed to the client
	Hash  string // persisted server-side
}

// NewTokenPair issues a fresh opaque token together with its storage hash.
func NewTokenPair() (*TokenPair, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to read randomness: %w", err)
	}

	token := base64.RawURLEncoding.EncodeToString(raw)
	return &TokenPair{Token: token, Hash: HashToken(token)}, nil
}

// HashToken derives the storage form of a token: hex-encoded sha256. The
// token itself is already high-entropy, so a plain hash is enough; no salt
// or work factor needed.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// VerifyToken reports whether token matches storedHash. The comparison is
// constant-time.
func VerifyToken(token, storedHash string) (bool, error) {
	if token == "" || storedHash == "" {
		return false, ErrEmptyToken
	}
	computed := HashToken(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1, nil
}
