package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"lendtrack-backend/internal/domain"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret")

	token, err := tm.GenerateAccessToken(2, "borrower@test.com", domain.RoleBorrower, time.Hour)
	assert.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, int32(2), claims.UserID)
	assert.Equal(t, domain.RoleBorrower, claims.Role)
}

func TestTokenManager_Expired(t *testing.T) {
	secret := []byte("test-secret")
	claims := UserClaims{
		UserID: 2,
		Role:   domain.RoleBorrower,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	assert.NoError(t, err)

	_, err = (&tokenManager{secret: secret}).ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a").GenerateAccessToken(2, "", domain.RoleStaff, time.Hour)
	assert.NoError(t, err)

	_, err = NewTokenManager("secret-b").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_GarbageToken(t *testing.T) {
	_, err := NewTokenManager("test-secret").ValidateToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
