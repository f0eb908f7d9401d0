package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"taskManager/internal/auth"
	"taskManager/internal/logger"

	"go.uber.org/zap"
)

const UserIDKey contextKey = "user_id"

type TokenParser interface {
	ParseToken(value string) (*auth.Claims, error)
}

// Authenticate пропускает запрос только с действующим Bearer-токеном
// и кладёт идентификатор пользователя в контекст.
func Authenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestId := GetRequestID(r.Context())

			value, ok := bearerToken(r)
			if !ok {
				logger.Warn("HTTP: Нет токена",
					zap.String("request_id", requestId),
					zap.String("client_ip", r.RemoteAddr))
				unauthorized(w, "требуется авторизация")
				return
			}

			claims, err := parser.ParseToken(value)
			if err != nil {
				logger.Warn("HTTP: Недействительный токен",
					zap.String("request_id", requestId),
					zap.Error(err),
					zap.String("client_ip", r.RemoteAddr))

				message := "недействительный токен"
				if errors.Is(err, auth.ErrTokenExpired) {
					message = "срок действия токена истёк"
				}
				unauthorized(w, message)
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				unauthorized(w, "недействительный токен")
				return
			}

			noteUser(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// GetUserID возвращает пользователя, установленного Authenticate.
func GetUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, value, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
		"errors":  []string{message},
	})
}
