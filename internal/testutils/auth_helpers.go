package testutils

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// testSigningKey signs test JWTs. The identity provider fake never checks
// signatures; the token only has to be well-formed.
var testSigningKey = []byte("test-jwt-signing-key-32-characters!!")

// BasicAuthHeader returns an Authorization header value for username and password.
func BasicAuthHeader(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// GenerateToken mints a signed JWT for subject, valid for an hour.
func GenerateToken(t *testing.T, subject string) string {
	t.Helper()

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	require.NoError(t, err, "failed to sign test token")
	return token
}

// BearerAuthHeader returns an Authorization header value for token.
func BearerAuthHeader(token string) string {
	return "Bearer " + token
}
