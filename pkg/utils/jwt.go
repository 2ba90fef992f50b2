package utils

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

func GenToken(secret []byte, uid, role string) (string, error) {
	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":  uid,
		"role": role,
	})

	token, err := tkn.SignedString(secret)
	if err != nil {
		return "", err
	}

	return token, nil
}

func ValidateToken(secret []byte, tokenString string) (string, string, error) {
	tkn, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", "", err
	}

	if claims, ok := tkn.Claims.(jwt.MapClaims); ok && tkn.Valid {
		uid, ok := claims["uid"].(string)
		if !ok {
			return "", "", fmt.Errorf("invalid token claims")
		}
		role, _ := claims["role"].(string)
		return uid, role, nil
	}
	return "", "", fmt.Errorf("invalid token")
}
