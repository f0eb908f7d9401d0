package handlers

import (
	"net/http"
	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"time"

	"go.uber.org/zap"
)

type AuthHandler struct {
	AuthService AuthService
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{AuthService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.RegisterRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if rejectInvalid(w, r, validateRegister(request)) {
		return
	}

	result, err := h.AuthService.Register(r.Context(), request.ToService())
	if err != nil {
		handleError(w, r, err, "register")
		return
	}

	logger.Info("HTTP_OUT: Пользователь зарегистрирован",
		zap.Int64("user_id", result.User.ID),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithData(w, http.StatusCreated, result, "пользователь зарегистрирован")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.LoginRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if rejectInvalid(w, r, validateLogin(request)) {
		return
	}

	result, err := h.AuthService.Login(r.Context(), request.Username, request.Password)
	if err != nil {
		handleError(w, r, err, "login")
		return
	}

	logger.Info("HTTP_OUT: Вход выполнен",
		zap.Int64("user_id", result.User.ID),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, result, "")
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.AuthService.Profile(r.Context(), userID)
	if err != nil {
		handleError(w, r, err, "profile")
		return
	}
	responseWithData(w, http.StatusOK, profile, "")
}
