package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"leave-portal/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMissing   = errors.New("session: token missing")
	ErrTokenMalformed = errors.New("session: token malformed")
	ErrTokenExpired   = errors.New("session: token expired")
)

type Claims struct {
	Email     string
	Role      domain.Role
	UserID    string
	Name      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// DecodeToken reads the claims of a bearer token without checking its
// signature; only the API holds the signing key. A token whose exp is not
// after now is reported as expired.
func DecodeToken(token string, now time.Time) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrTokenMissing
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	var c Claims
	exp, err := mc.GetExpirationTime()
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if exp != nil {
		c.ExpiresAt = exp.Time
		if !now.Before(exp.Time) {
			return Claims{}, ErrTokenExpired
		}
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}

	sub, _ := mc.GetSubject()
	c.Email = stringClaim(mc, "email")
	if c.Email == "" && strings.Contains(sub, "@") {
		c.Email = sub
	}
	c.Name = stringClaim(mc, "name")
	c.UserID = stringClaim(mc, "userId", "user_id", "id")
	if c.UserID == "" && !strings.Contains(sub, "@") {
		c.UserID = sub
	}
	c.Role = roleClaim(mc)

	return c, nil
}

func stringClaim(mc jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		switch v := mc[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// roleClaim accepts "role": "ADMIN" as well as Spring-style
// "roles"/"authorities" arrays and returns the highest known role.
func roleClaim(mc jwt.MapClaims) domain.Role {
	var best domain.Role
	consider := func(v any) {
		s, ok := v.(string)
		if !ok {
			return
		}
		if r, ok := domain.ParseRole(s); ok && r.Rank() > best.Rank() {
			best = r
		}
	}
	consider(mc["role"])
	for _, k := range []string{"roles", "authorities"} {
		if list, ok := mc[k].([]any); ok {
			for _, v := range list {
				if m, ok := v.(map[string]any); ok {
					consider(m["authority"])
					continue
				}
				consider(v)
			}
		}
	}
	return best
}
