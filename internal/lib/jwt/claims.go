package jwt

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/geobee/geobee/internal/lib/apperr"
)

// RoleUser — единственная роль, которую выдаёт приложение.
const RoleUser = "user"

// ErrInvalidToken возвращается для неподписанного, испорченного или просроченного токена.
var ErrInvalidToken = apperr.New(apperr.Unauthenticated, "Invalid or expired token")

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	ID                   string `json:"id"`    // Идентификатор пользователя
	Email                string `json:"email"` // Email пользователя
	Role                 string `json:"role"`  // Роль пользователя
	jwt.RegisteredClaims        // ExpiresAt, IssuedAt
}

// GenerateToken создает JWT токен с заданными id, email и role, подписывая его секретным ключом.
//
// Время жизни токена определяется полем tokenTTL.
func (j *MakerImpl) GenerateToken(userID, email, role string) (string, error) {
	const op = "jwt.GenerateToken"
	now := j.now()
	claims := CustomClaims{
		ID:    userID,
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken парсит JWT токен, проверяет подпись и срок действия,
// возвращает CustomClaims, если токен корректен.
//
// Токен считается просроченным уже в момент now == exp.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unauthenticated, ErrInvalidToken.Message, fmt.Errorf("%s: %w", op, err))
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, apperr.Wrap(apperr.Unauthenticated, ErrInvalidToken.Message, fmt.Errorf("%s: invalid token", op))
	}
	return claims, nil
}
