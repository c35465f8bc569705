package remember

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fittrack/internal/config"
)

// Claims описывает пейлоад персистентного login-токена («запомнить меня»).
// Идентификатор пользователя хранится в subject.
type Claims struct {
	jwt.RegisteredClaims
}

// Service инкапсулирует выпуск и проверку remember-токенов.
type Service interface {
	Issue(userID int64) (string, error)
	Parse(tokenString string) (int64, error)
}

type service struct {
	cfg *config.SessionConfig
}

// NewService создаёт сервис remember-токенов на основе конфигурации сессий.
func NewService(cfg *config.SessionConfig) Service {
	return &service{cfg: cfg}
}

// Issue выпускает подписанный токен для пользователя со сроком жизни RememberTTL.
func (s *service) Issue(userID int64) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RememberTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

// Parse валидирует токен и возвращает идентификатор пользователя.
func (s *service) Parse(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Дополнительная защита: убеждаемся, что метод подписи ожидаемый
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return 0, jwt.ErrTokenInvalidClaims
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject in remember token: %w", err)
	}
	return userID, nil
}
