package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliancehub/internal/compliance"
)

func testProfile() compliance.Profile {
	return compliance.Profile{
		ID:    "user-1",
		Email: "jordan@example.com",
		Role:  compliance.RoleEmployee,
	}
}

func TestIssueAndVerify(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)

	token, session, err := manager.Issue(testProfile())
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, compliance.RoleEmployee, session.Role)

	parsed, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, parsed.UserID)
	assert.Equal(t, session.Email, parsed.Email)
	assert.Equal(t, session.Role, parsed.Role)
	assert.WithinDuration(t, session.ExpiresAt, parsed.ExpiresAt, time.Second)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)

	t.Run("garbage token", func(t *testing.T) {
		_, err := manager.Verify("not.a.token")
		assert.Error(t, err)
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		other := NewManager("other-secret", time.Hour)
		token, _, err := other.Issue(testProfile())
		require.NoError(t, err)
		_, err = manager.Verify(token)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		short := NewManager("test-secret", -time.Minute)
		token, _, err := short.Issue(testProfile())
		require.NoError(t, err)
		_, err = manager.Verify(token)
		assert.Error(t, err)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPassword("correct horse battery staple", hash))
	assert.False(t, CheckPassword("wrong password", hash))
}

func TestRoleHome(t *testing.T) {
	assert.Equal(t, "/admin", RoleHome(compliance.RoleAdmin))
	assert.Equal(t, "/employee", RoleHome(compliance.RoleEmployee))
	assert.Equal(t, "/employee", RoleHome(compliance.Role("unknown")))
}
