// Package security implements parent password hashing and verification,
// opaque bearer session tokens with bounded lifetime, and the
// authentication-attempt rate limiter, using Argon2id for password hashing
// and PBKDF2 for database-encryption-key derivation via golang.org/x/crypto.
package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"

	"dayguard/internal/apperr"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16

	kdfIterations = 600_000
	kdfKeyLen     = 32 // 256-bit database encryption key
)

// HashPassword produces an Argon2id hash string encoding the salt and
// parameters, suitable for storing in configuration.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", apperr.Internal("generating password salt: %v", err)
	}
	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
	return encoded, nil
}

// VerifyPassword distinguishes "wrong password" (false, nil) from "malformed
// hash" (false, error), as required by.
func VerifyPassword(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, apperr.Internal("malformed password hash")
	}
	var version int
	var memory, timeCost uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, apperr.Internal("malformed password hash: %v", err)
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &threads); err != nil {
		return false, apperr.Internal("malformed password hash: %v", err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, apperr.Internal("malformed password hash salt: %v", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, apperr.Internal("malformed password hash digest: %v", err)
	}

	got := argon2.IDKey([]byte(password), salt, timeCost, memory, threads, uint32(len(want)))
	if subtle.ConstantTimeCompare(got, want) == 1 {
		return true, nil
	}
	return false, nil
}

// DeriveEncryptionKey derives the 256-bit database encryption key from the
// parent password via PBKDF2-HMAC-SHA256 with an application-specific salt,
// formatted as the SQLCipher-style hex literal "x'...'".
func DeriveEncryptionKey(password, appSalt string) string {
	salt := sha256.Sum256([]byte(appSalt))
	key := pbkdf2.Key([]byte(password), salt[:], kdfIterations, kdfKeyLen, sha256.New)
	return "x'" + hex.EncodeToString(key) + "'"
}

const (
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	tokenLength   = 64
	tokenTTL      = 15 * time.Minute
)

func generateToken() (string, error) {
	b := make([]byte, tokenLength)
	buf := make([]byte, tokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", apperr.Internal("generating session token: %v", err)
	}
	for i, v := range buf {
		b[i] = tokenAlphabet[int(v)%len(tokenAlphabet)]
	}
	return string(b), nil
}

type tokenEntry struct {
	createdAt time.Time
	expiresAt time.Time
}

// SessionStore is the in-memory, 15-minute-TTL parent bearer token table
//. Never persisted to disk.
type SessionStore struct {
	mu     sync.RWMutex
	tokens map[string]tokenEntry
}

func NewSessionStore() *SessionStore {
	return &SessionStore{tokens: make(map[string]tokenEntry)}
}

// Create mints a fresh token; called only on successful password verification.
func (s *SessionStore) Create(now time.Time) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.tokens[token] = tokenEntry{createdAt: now, expiresAt: now.Add(tokenTTL)}
	s.mu.Unlock()
	return token, nil
}

// Validate returns true iff token exists and now is strictly before its
// expiry.
func (s *SessionStore) Validate(token string, now time.Time) bool {
	s.mu.RLock()
	entry, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return now.Before(entry.expiresAt)
}

// Revoke removes a token immediately.
func (s *SessionStore) Revoke(token string) bool {
	s.mu.Lock()
	_, existed := s.tokens[token]
	delete(s.tokens, token)
	s.mu.Unlock()
	return existed
}

// Sweep opportunistically drops expired tokens; never required for
// correctness since Validate already rechecks expiry.
func (s *SessionStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for tok, entry := range s.tokens {
		if !now.Before(entry.expiresAt) {
			delete(s.tokens, tok)
			removed++
		}
	}
	return removed
}

// RateLimiter enforces the sliding-window authentication throttle: max 5
// consecutive failures in a 15-minute window, reset on success.
type RateLimiter struct {
	mu       sync.Mutex
	window   time.Duration
	maxFails int
	failures []time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{window: 15 * time.Minute, maxFails: 5}
}

// Allowed reports whether an authentication attempt may proceed right now.
func (r *RateLimiter) Allowed(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune(now)
	return len(r.failures) < r.maxFails
}

// RecordFailure appends a failed attempt timestamp.
func (r *RateLimiter) RecordFailure(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune(now)
	r.failures = append(r.failures, now)
}

// RecordSuccess resets the failure count for the window.
func (r *RateLimiter) RecordSuccess() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = r.failures[:0]
}

func (r *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-r.window)
	i := 0
	for ; i < len(r.failures); i++ {
		if r.failures[i].After(cutoff) {
			break
		}
	}
	r.failures = r.failures[i:]
}
