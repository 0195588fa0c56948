package testhelpers

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestSecret signs tokens in tests
const TestSecret = "test-secret"

// Token signs an identity-provider style token for userID with roles
func Token(t *testing.T, secret, userID string, roles ...string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   userID,
		"roles": roles,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// Authorize sets a bearer token for userID on req
func Authorize(t *testing.T, req *http.Request, userID string, roles ...string) *http.Request {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+Token(t, TestSecret, userID, roles...))
	return req
}
