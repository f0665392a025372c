package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuePairAndParse(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute, time.Hour)

	pair, err := m.IssuePair(42)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	userID, err := m.Parse(pair.Access, "access")
	require.NoError(t, err)
	assert.EqualValues(t, 42, userID)

	userID, err = m.Parse(pair.Refresh, "refresh")
	require.NoError(t, err)
	assert.EqualValues(t, 42, userID)
}

func TestParseWrongType(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute, time.Hour)

	pair, err := m.IssuePair(7)
	require.NoError(t, err)

	// Refresh-токен нельзя отдать как access и наоборот.
	_, err = m.Parse(pair.Refresh, "access")
	assert.ErrorIs(t, err, ErrTokenWrongType)

	_, err = m.Parse(pair.Access, "refresh")
	assert.ErrorIs(t, err, ErrTokenWrongType)
}

func TestParseExpired(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute, time.Hour)

	token, err := m.IssueAccess(7)
	require.NoError(t, err)

	_, err = m.Parse(token, "access")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-one", time.Minute, time.Hour)
	verifier := NewTokenManager("secret-two", time.Minute, time.Hour)

	token, err := issuer.IssueAccess(7)
	require.NoError(t, err)

	_, err = verifier.Parse(token, "access")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute, time.Hour)

	_, err := m.Parse("not-a-token", "access")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = m.Parse("", "access")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("dunetube-demo")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, CheckPassword(hash, "dunetube-demo"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("", "dunetube-demo"))
}
