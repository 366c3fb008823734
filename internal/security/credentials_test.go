package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPassword_WrongPasswordIsNotAnError(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	ok, err := VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_MalformedHashIsAnError(t *testing.T) {
	_, err := VerifyPassword("anything", "not-a-hash")
	assert.Error(t, err)
}

func TestHashPassword_DistinctSaltsProduceDistinctHashes(t *testing.T) {
	a, err := HashPassword("same password")
	require.NoError(t, err)
	b, err := HashPassword("same password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDeriveEncryptionKey_DeterministicAndFormatted(t *testing.T) {
	k1 := DeriveEncryptionKey("parentpass", "appsalt")
	k2 := DeriveEncryptionKey("parentpass", "appsalt")
	assert.Equal(t, k1, k2)
	assert.True(t, len(k1) > len("x''"))
	assert.Equal(t, byte('x'), k1[0])

	k3 := DeriveEncryptionKey("differentpass", "appsalt")
	assert.NotEqual(t, k1, k3)
}

func TestSessionStore_CreateAndValidate(t *testing.T) {
	store := NewSessionStore()
	now := time.Now()

	token, err := store.Create(now)
	require.NoError(t, err)
	assert.True(t, store.Validate(token, now))
}

func TestSessionStore_ExpiresAfterTTL(t *testing.T) {
	store := NewSessionStore()
	now := time.Now()

	token, err := store.Create(now)
	require.NoError(t, err)
	assert.True(t, store.Validate(token, now.Add(14*time.Minute)))
	assert.False(t, store.Validate(token, now.Add(16*time.Minute)))
}

func TestSessionStore_RevokeInvalidatesImmediately(t *testing.T) {
	store := NewSessionStore()
	now := time.Now()

	token, err := store.Create(now)
	require.NoError(t, err)

	assert.True(t, store.Revoke(token))
	assert.False(t, store.Validate(token, now))
	assert.False(t, store.Revoke(token), "revoking a second time reports nothing existed")
}

func TestSessionStore_UnknownTokenFailsValidation(t *testing.T) {
	store := NewSessionStore()
	assert.False(t, store.Validate("not-a-real-token", time.Now()))
}

func TestSessionStore_Sweep(t *testing.T) {
	store := NewSessionStore()
	now := time.Now()

	_, err := store.Create(now)
	require.NoError(t, err)

	removed := store.Sweep(now.Add(20 * time.Minute))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, store.Sweep(now.Add(20*time.Minute)))
}

func TestRateLimiter_BlocksAfterMaxConsecutiveFailures(t *testing.T) {
	rl := NewRateLimiter()
	now := time.Now()

	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allowed(now), "attempt %d should still be allowed", i)
		rl.RecordFailure(now)
	}
	assert.False(t, rl.Allowed(now))
}

func TestRateLimiter_SuccessResetsFailures(t *testing.T) {
	rl := NewRateLimiter()
	now := time.Now()

	for i := 0; i < 5; i++ {
		rl.RecordFailure(now)
	}
	require.False(t, rl.Allowed(now))

	rl.RecordSuccess()
	assert.True(t, rl.Allowed(now))
}

func TestRateLimiter_OldFailuresAgeOutOfWindow(t *testing.T) {
	rl := NewRateLimiter()
	now := time.Now()

	for i := 0; i < 5; i++ {
		rl.RecordFailure(now)
	}
	require.False(t, rl.Allowed(now))

	assert.True(t, rl.Allowed(now.Add(16*time.Minute)), "failures older than the window no longer count")
}
