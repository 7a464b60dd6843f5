package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_IssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user-123", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestManager_Verify_Expired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	token, err := m.Issue("user-123")
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenMalformed)
}

func TestManager_Verify_Corrupted(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Issue("user-123")
	require.NoError(t, err)

	_, err = m.Verify(token + "x")
	assert.ErrorIs(t, err, ErrTokenMalformed)
	assert.NotErrorIs(t, err, ErrTokenExpired)

	_, err = m.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestManager_Verify_WrongSecret(t *testing.T) {
	token, err := NewManager("secret-one", time.Hour).Issue("user-123")
	require.NoError(t, err)

	_, err = NewManager("secret-two", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestManager_Verify_RejectsUnsignedToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: "user-123",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestManager_Verify_SubjectOnlyToken(t *testing.T) {
	// tokens minted elsewhere may carry only the registered subject
	m := NewManager("test-secret", time.Hour)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-456",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	raw, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	claims, err := m.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-456", claims.UserID)
}
