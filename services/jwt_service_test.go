package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"agrisense-http-service/config"
)

func jwtTestService() *JWTService {
	return NewJWTService(&config.Config{JWTSecretKey: "unit-test-secret"})
}

func TestJWTRoundTrip(t *testing.T) {
	svc := jwtTestService()

	token, err := svc.GenerateToken(42, "farmer")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ExtractClaims(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "farmer", claims.Role)
	assert.Equal(t, "agrisense-http-service", claims.Issuer)
}

func TestJWTRejectsTamperedToken(t *testing.T) {
	svc := jwtTestService()

	token, err := svc.GenerateToken(1, "admin")
	assert.NoError(t, err)

	_, err = svc.ExtractClaims(token + "x")
	assert.Error(t, err)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, err := jwtTestService().GenerateToken(7, "farmer")
	assert.NoError(t, err)

	other := NewJWTService(&config.Config{JWTSecretKey: "different-secret"})
	_, err = other.ExtractClaims(token)
	assert.Error(t, err)
}
