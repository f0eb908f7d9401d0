package handlers

import (
	"net/http"
	"strconv"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultPageNumber = 1
	defaultPageSize   = 10
)

// pathID читает положительный идентификатор из параметра пути.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		logger.Warn("HTTP: Не удалось получить id",
			zap.String("param", name),
			zap.String("value", raw),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное значение "+name)
		return 0, false
	}
	return id, true
}

// queryInt возвращает значение по умолчанию, если параметр не задан.
func queryInt(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("HTTP: Ошибка получения параметра",
			zap.String("query", name),
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "не удалось получить значение "+name)
		return 0, false
	}
	return value, true
}

func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "требуется авторизация")
		return 0, false
	}
	return userID, true
}
