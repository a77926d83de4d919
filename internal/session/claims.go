package session

import (
	"github.com/golang-jwt/jwt/v5"
)

// decodeUserID pulls the user identifier out of a JWT payload without
// verifying the signature. Fails soft: anything that does not parse is
// treated as no session. The guide API issues a "userId" claim; "sub"
// is accepted as a fallback.
func decodeUserID(token string) string {
	if token == "" {
		return ""
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return ""
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	if id, ok := claims["userId"].(string); ok && id != "" {
		return id
	}
	if sub, err := claims.GetSubject(); err == nil {
		return sub
	}
	return ""
}
