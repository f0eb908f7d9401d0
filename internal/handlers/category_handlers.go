package handlers

import (
	"net/http"
	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"

	"go.uber.org/zap"
)

type CategoryHandler struct {
	CategoryService CategoryService
}

func NewCategoryHandler(categoryService CategoryService) *CategoryHandler {
	return &CategoryHandler{CategoryService: categoryService}
}

func (h *CategoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.CategoryService.GetAll(r.Context())
	if err != nil {
		handleError(w, r, err, "list_categories")
		return
	}
	responseWithData(w, http.StatusOK, dto.FromCategoryList(categories), "")
}

// Search ищет по подстроке имени без учёта регистра: ?name=work.
func (h *CategoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		responseWithError(w, http.StatusBadRequest, "параметр name обязателен")
		return
	}

	categories, err := h.CategoryService.Search(r.Context(), name)
	if err != nil {
		handleError(w, r, err, "search_categories")
		return
	}
	responseWithData(w, http.StatusOK, dto.FromCategoryList(categories), "")
}

func (h *CategoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	category, err := h.CategoryService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "get_category")
		return
	}
	responseWithData(w, http.StatusOK, dto.FromCategory(category), "")
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CategoryRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if rejectInvalid(w, r, validateCategory(request)) {
		return
	}

	category, err := h.CategoryService.Create(r.Context(), request.ToModel())
	if err != nil {
		handleError(w, r, err, "create_category")
		return
	}

	logger.Info("HTTP_OUT: Категория создана",
		zap.Int64("category_id", category.ID),
		zap.Int("http_status", http.StatusCreated))

	responseWithData(w, http.StatusCreated, dto.FromCategory(category), "категория создана")
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var request dto.CategoryRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if rejectInvalid(w, r, validateCategory(request)) {
		return
	}

	category, err := h.CategoryService.Update(r.Context(), id, request.ToModel())
	if err != nil {
		handleError(w, r, err, "update_category")
		return
	}
	responseWithData(w, http.StatusOK, dto.FromCategory(category), "категория обновлена")
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.CategoryService.Delete(r.Context(), id); err != nil {
		handleError(w, r, err, "delete_category")
		return
	}
	responseWithData(w, http.StatusOK, nil, "категория удалена")
}
