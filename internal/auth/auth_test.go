package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuer("0123456789abcdef0123", time.Hour, func() time.Time { return now })

	token, expiresAt, err := issuer.Issue(42, "alice", true)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IsStaff)
}

func TestIssuer_Rejects(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuer("0123456789abcdef0123", time.Hour, func() time.Time { return now })
	token, _, err := issuer.Issue(1, "bob", false)
	require.NoError(t, err)

	t.Run("Expired", func(t *testing.T) {
		later := NewIssuer("0123456789abcdef0123", time.Hour, func() time.Time { return now.Add(2 * time.Hour) })
		_, err := later.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		other := NewIssuer("another-secret-value!", time.Hour, func() time.Time { return now })
		_, err := other.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := issuer.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse battery"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestPasswordProblems(t *testing.T) {
	testCases := []struct {
		name     string
		password string
		username string
		email    string
		problems int
	}{
		{"Strong", "v3ry-l0ng-phrase", "alice", "alice@example.com", 0},
		{"Too short", "ab1!", "alice", "", 1},
		{"Common", "password123", "alice", "", 1},
		{"Numeric", "83749261", "alice", "", 1},
		{"Short and numeric", "1234", "alice", "", 2},
		{"Contains username", "alice-rocks-2030", "alice", "", 1},
		{"Contains email local part", "zz-jsmith-zz", "someone", "jsmith@example.com", 1},
		{"Empty", "", "alice", "", 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Len(t, PasswordProblems(tc.password, tc.username, tc.email), tc.problems)
		})
	}
}
