package security

import (
	"code_judge_cli/internal/platform/config"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

func GenerateToken(userID uint, displayName, email, role string) (string, error) {
	claims := map[string]interface{}{
		"user_id":      userID,
		"display_name": displayName,
		"email":        email,
		"role":         role,
		"exp":          time.Now().Add(config.AppConfig.JWTExp).Unix(),
		"iat":          time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

func GetUserIDFromClaims(claims map[string]interface{}) (uint, error) {
	// jwx decodes numeric claims as float64
	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errors.New("user_id claim is missing or not a number")
	}
	return uint(id), nil
}

func GetUserRoleFromClaims(claims map[string]interface{}) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}

// TokenExpiry reads the exp claim of a token without verifying its signature.
// The client only uses this for display; the server remains the authority on
// whether a token is actually valid.
func TokenExpiry(tokenString string) (time.Time, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, err
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, errors.New("token has no expiry claim")
	}
	return exp.Time, nil
}
