package session

import (
	"context"
	"testing"
	"time"

	"VidHub.com/pkg/errno"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", "vidhub")
	token, err := m.Issue(Session{UserID: "u1", Username: "alice"}, time.Hour)
	require.NoError(t, err)

	s, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, Session{UserID: "u1", Username: "alice"}, s)
	assert.False(t, s.IsAnonymous())

	t.Run("密钥错误", func(t *testing.T) {
		_, err := NewTokenManager("other", "vidhub").Parse(token)
		assert.True(t, errno.Is(err, errno.UnauthorizedErr))
	})

	t.Run("携带角色", func(t *testing.T) {
		adminToken, err := m.Issue(Session{UserID: "root", Username: "root", Role: RoleAdmin}, time.Hour)
		require.NoError(t, err)
		s, err := m.Parse(adminToken)
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, s.Role)
		assert.True(t, s.IsAdmin())
	})

	t.Run("已过期", func(t *testing.T) {
		expired, err := m.Issue(Session{UserID: "u1"}, -time.Minute)
		require.NoError(t, err)
		_, err = m.Parse(expired)
		assert.True(t, errno.Is(err, errno.UnauthorizedErr))
	})
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", token)

	_, ok = BearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = BearerToken("")
	assert.False(t, ok)
}

func TestContext(t *testing.T) {
	assert.True(t, FromContext(context.Background()).IsAnonymous())
	ctx := NewContext(context.Background(), Session{UserID: "u1"})
	assert.Equal(t, "u1", FromContext(ctx).UserID)
}

func TestIsAdmin(t *testing.T) {
	assert.False(t, Session{UserID: "u1"}.IsAdmin())
	assert.False(t, Session{Role: RoleAdmin}.IsAdmin())
	assert.True(t, Session{UserID: "u1", Role: RoleAdmin}.IsAdmin())
}
