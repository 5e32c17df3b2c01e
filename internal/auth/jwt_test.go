package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/receiptsplit/internal/models"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, err := m.Generate(&models.User{ID: "user-1", Email: "a@example.com"})
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, &models.User{ID: "user-1", Email: "a@example.com"}, claims.User())
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	sign := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := func() jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	otherIssuer := valid()
	otherIssuer.Issuer = "someone-else"
	noSubject := valid()
	noSubject.Subject = ""
	noExpiry := valid()
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign(jwt.SigningMethodHS256, []byte("other"), &Claims{RegisteredClaims: valid()})},
		{"expired", sign(jwt.SigningMethodHS256, []byte("secret"), &Claims{RegisteredClaims: expired})},
		{"other issuer", sign(jwt.SigningMethodHS256, []byte("secret"), &Claims{RegisteredClaims: otherIssuer})},
		{"missing subject", sign(jwt.SigningMethodHS256, []byte("secret"), &Claims{RegisteredClaims: noSubject})},
		{"missing expiry", sign(jwt.SigningMethodHS256, []byte("secret"), &Claims{RegisteredClaims: noExpiry})},
		{"other hmac size", sign(jwt.SigningMethodHS512, []byte("secret"), &Claims{RegisteredClaims: valid()})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTManager_GenerateRequiresUser(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	_, err := m.Generate(&models.User{})
	assert.Error(t, err)
}
