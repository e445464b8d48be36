package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/ewaste/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// The client cannot verify the server's signature, so tokens are only
// inspected, never trusted for authorization decisions.
var claimsParser = jwt.NewParser()

func unverifiedClaims(token string) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := claimsParser.ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// checkTokenExpiry returns common.ErrTokenExpired when token is a JWT whose
// exp claim is not after now. Opaque tokens and JWTs without exp pass.
func checkTokenExpiry(token string, now time.Time) error {
	if token == "" {
		return common.ErrInvalidToken
	}
	claims, ok := unverifiedClaims(token)
	if !ok {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if exp != nil && !exp.After(now) {
		return common.ErrTokenExpired
	}
	return nil
}

// userIDFromToken reads the user id from the userId, id or sub claim.
func userIDFromToken(token string) string {
	claims, ok := unverifiedClaims(token)
	if !ok {
		return ""
	}
	for _, name := range []string{"userId", "id", "sub"} {
		switch v := claims[name].(type) {
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
