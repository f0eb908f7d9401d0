package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"taskManager/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultTokenTTL = 24 * time.Hour

var (
	ErrEmptySecret  = errors.New("секрет подписи токена не задан")
	ErrInvalidToken = errors.New("недействительный токен")
	ErrTokenExpired = errors.New("срок действия токена истёк")
)

// Claims: содержимое токена: sub, email, jti и exp (iss/aud только если настроены).
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID разбирает sub обратно в идентификатор пользователя.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: sub %q", ErrInvalidToken, c.Subject)
	}
	return id, nil
}

type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// TokenIssuer подписывает токены симметричным секретом (HS256).
// Кроме секрета состояния нет, отзыва токенов нет: жизнь токена ограничена только exp.
type TokenIssuer struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	audience string
	now      func() time.Time
}

func NewTokenIssuer(secret []byte, options ...IssuerOption) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	issuer := &TokenIssuer{
		secret: append([]byte(nil), secret...),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(issuer)
		}
	}
	return issuer, nil
}

func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

func (i *TokenIssuer) GenerateToken(user *models.User) (Token, error) {
	if user == nil {
		return Token{}, errors.New("пользователь не задан")
	}

	// exp хранится с точностью до секунды, поэтому и ExpiresAt округляем так же
	expiresAt := i.now().Add(i.ttl).UTC().Truncate(time.Second)
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    i.issuer,
		},
	}
	if i.audience != "" {
		claims.Audience = jwt.ClaimStrings{i.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Token{}, fmt.Errorf("подпись токена: %w", err)
	}

	return Token{Value: signed, ID: claims.ID, ExpiresAt: expiresAt}, nil
}

func (i *TokenIssuer) ParseToken(value string) (*Claims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	}
	if i.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(i.issuer))
	}
	if i.audience != "" {
		parserOptions = append(parserOptions, jwt.WithAudience(i.audience))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(value, &claims, func(token *jwt.Token) (any, error) {
		return i.secret, nil
	}, parserOptions...)
	if err != nil {
		return nil, mapJWTError(err)
	}

	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: нет sub или jti", ErrInvalidToken)
	}
	return &claims, nil
}

func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	return fmt.Errorf("%w: %v", ErrInvalidToken, err)
}
