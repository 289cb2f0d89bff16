package sessiontest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const signingKey = "sessiontest-signing-key"

// Token mints an HS256 token for email and role that expires ttl after
// issuedAt. Extra claims override the defaults.
func Token(t testing.TB, email, role string, issuedAt time.Time, ttl time.Duration, extra ...jwt.MapClaims) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":   email,
		"email": email,
		"role":  role,
		"iat":   issuedAt.Unix(),
		"exp":   issuedAt.Add(ttl).Unix(),
	}
	for _, e := range extra {
		for k, v := range e {
			claims[k] = v
		}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
