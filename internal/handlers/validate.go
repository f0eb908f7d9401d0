package handlers

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/mail"
	"regexp"
	"strings"
	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/models"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	maxTitleLength               = 200
	maxTaskDescriptionLength     = 2000
	maxTagsPerTask               = 10
	maxTagNameLength             = 50
	maxCategoryNameLength        = 100
	maxCategoryDescriptionLength = 500
	minUsernameLength            = 3
	maxUsernameLength            = 50
	maxEmailLength               = 100
	minPasswordLength            = 6
	maxBodyBytes                 = 1 << 20
)

var colorPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// decodeJSON проверяет тип контента и читает тело; при ошибке ответ уже записан.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return false
	}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()

	if err := decoder.Decode(target); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса", err.Error())
		return false
	}
	return true
}

// rejectInvalid отвечает 400, если есть ошибки валидации.
func rejectInvalid(w http.ResponseWriter, r *http.Request, errs []string) bool {
	if len(errs) == 0 {
		return false
	}
	logger.Warn("HTTP: Ошибка валидации",
		zap.Strings("errors", errs),
		zap.String("client_ip", r.RemoteAddr))

	responseWithError(w, http.StatusBadRequest, "ошибка валидации", errs...)
	return true
}

type validationErrors []string

func (v *validationErrors) check(ok bool, format string, args ...any) {
	if !ok {
		*v = append(*v, fmt.Sprintf(format, args...))
	}
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validateRegister(req dto.RegisterRequest) []string {
	var errs validationErrors
	username := strings.TrimSpace(req.Username)
	errs.check(length(username) >= minUsernameLength && length(username) <= maxUsernameLength,
		"username: длина от %d до %d символов", minUsernameLength, maxUsernameLength)
	errs.check(req.Email != "", "email: обязательное поле")
	if req.Email != "" {
		errs.check(validEmail(req.Email), "email: неверный формат")
		errs.check(length(req.Email) <= maxEmailLength, "email: не длиннее %d символов", maxEmailLength)
	}
	errs.check(length(req.Password) >= minPasswordLength, "password: не короче %d символов", minPasswordLength)
	errs.check(length(req.FirstName) <= maxUsernameLength, "first_name: не длиннее %d символов", maxUsernameLength)
	errs.check(length(req.LastName) <= maxUsernameLength, "last_name: не длиннее %d символов", maxUsernameLength)
	return errs
}

func validateLogin(req dto.LoginRequest) []string {
	var errs validationErrors
	errs.check(strings.TrimSpace(req.Username) != "", "username: обязательное поле")
	errs.check(req.Password != "", "password: обязательное поле")
	return errs
}

// validateTask проверяет тело задачи; срок в будущем требуется только при создании.
func validateTask(req dto.TaskRequest, now time.Time, creating bool) []string {
	var errs validationErrors
	errs.check(strings.TrimSpace(req.Title) != "", "title: обязательное поле")
	errs.check(length(req.Title) <= maxTitleLength, "title: не длиннее %d символов", maxTitleLength)
	errs.check(length(req.Description) <= maxTaskDescriptionLength,
		"description: не длиннее %d символов", maxTaskDescriptionLength)

	if req.Priority != "" {
		errs.check(models.Priority(req.Priority).Valid(), "priority: допустимы low, medium, high")
	}
	if req.Status != "" {
		errs.check(models.Status(req.Status).Valid(), "status: допустимы todo, in_progress, done")
	}
	if creating && req.DueDate != nil {
		errs.check(req.DueDate.After(now), "due_date: срок должен быть в будущем")
	}
	if req.CategoryID != nil {
		errs.check(*req.CategoryID > 0, "category_id: должен быть положительным")
	}

	errs.check(len(req.Tags) <= maxTagsPerTask, "tags: не больше %d тегов", maxTagsPerTask)
	for _, tag := range req.Tags {
		errs.check(length(strings.TrimSpace(tag)) <= maxTagNameLength,
			"tags: имя тега не длиннее %d символов", maxTagNameLength)
	}
	return errs
}

func validateCategory(req dto.CategoryRequest) []string {
	var errs validationErrors
	errs.check(strings.TrimSpace(req.Name) != "", "name: обязательное поле")
	errs.check(length(req.Name) <= maxCategoryNameLength, "name: не длиннее %d символов", maxCategoryNameLength)
	errs.check(length(req.Description) <= maxCategoryDescriptionLength,
		"description: не длиннее %d символов", maxCategoryDescriptionLength)
	if req.Color != "" {
		errs.check(colorPattern.MatchString(req.Color), "color: ожидается #RRGGBB или #RGB")
	}
	return errs
}
