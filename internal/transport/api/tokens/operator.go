// Package tokens выпуск и проверка JWT операторов, которым разрешено работать с кошельками.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const Issuer = "groph-wallet"

var (
	ErrTokenExpired  = errors.New("token expired")
	ErrInvalidClaims = errors.New("invalid claims")
)

// OperatorClaims имя оператора хранится в Subject.
type OperatorClaims struct {
	jwt.RegisteredClaims
}

func GenerateOperatorJWT(operator string, expire time.Duration, key []byte) (string, error) {
	now := time.Now()
	claims := OperatorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   operator,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("generating operator jwt token: %s", err.Error())
	}
	return token, nil
}

// ValidateOperatorJWT проверяет подпись, срок действия и издателя. Возвращает claims оператора.
func ValidateOperatorJWT(tokenString string, key []byte) (*OperatorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, new(OperatorClaims), func(_ *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer(Issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("validating operator jwt token: %w", err)
	}

	claims, ok := token.Claims.(*OperatorClaims)
	if !ok || claims.Subject == "" {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}
