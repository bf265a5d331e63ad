package webserver

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// TokenTTL is how long issued admin tokens stay valid.
const TokenTTL = 24 * time.Hour

// IssueToken signs a bearer token for a back-office operator.
func IssueToken(secret, username, level string, operatorID int64) (string, error) {
	claims := jwt.MapClaims{
		"uid":      operatorID,
		"username": username,
		"level":    level,
		"exp":      time.Now().Add(TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// OperatorName returns the authenticated operator's username, or empty when
// the request carries no valid token. The middleware parses tokens with
// jwt/v5, so the context value is read through that type.
func OperatorName(c echo.Context) string {
	token, ok := c.Get("user").(*jwtv5.Token)
	if !ok || token == nil {
		return ""
	}
	claims, ok := token.Claims.(jwtv5.MapClaims)
	if !ok {
		return ""
	}
	name, _ := claims["username"].(string)
	return name
}
