package handlers

import (
	"net/http"
	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/models"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
	now         func() time.Time
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
		now:         time.Now,
	}
}

// List отдаёт страницу задач пользователя: ?page=1&page_size=10.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	page, ok := queryInt(w, r, "page", defaultPageNumber)
	if !ok {
		return
	}
	size, ok := queryInt(w, r, "page_size", defaultPageSize)
	if !ok {
		return
	}

	result, err := h.TaskService.List(r.Context(), userID, page, size)
	if err != nil {
		handleError(w, r, err, "list_tasks")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(result.Items)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, dto.FromTaskPage(result, h.now()), "")
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var request dto.TaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if rejectInvalid(w, r, validateTask(request, h.now(), true)) {
		return
	}

	logger.Info("HTTP: Вызов сервиса создания задач")
	task, err := h.TaskService.Create(r.Context(), request.ToModel(), userID)
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Int64("task_id", task.ID),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithData(w, http.StatusCreated, dto.FromTask(task, h.now()), "задача создана")
}

func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	task, err := h.TaskService.GetByID(r.Context(), id, userID)
	if err != nil {
		handleError(w, r, err, "get_task")
		return
	}
	responseWithData(w, http.StatusOK, dto.FromTask(task, h.now()), "")
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var request dto.TaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if rejectInvalid(w, r, validateTask(request, h.now(), false)) {
		return
	}

	task, err := h.TaskService.Update(r.Context(), id, request.ToModel(), userID)
	if err != nil {
		handleError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.Int64("task_id", id),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, dto.FromTask(task, h.now()), "задача обновлена")
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.TaskService.Delete(r.Context(), id, userID); err != nil {
		handleError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.Int64("task_id", id),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, nil, "задача удалена")
}

func (h *TaskHandler) GetByStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	status := models.Status(chi.URLParam(r, "status"))

	tasks, err := h.TaskService.GetByStatus(r.Context(), userID, status)
	if err != nil {
		handleError(w, r, err, "tasks_by_status")
		return
	}
	responseWithData(w, http.StatusOK, dto.FromTaskList(tasks, h.now()), "")
}

func (h *TaskHandler) GetByPriority(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	priority := models.Priority(chi.URLParam(r, "priority"))

	tasks, err := h.TaskService.GetByPriority(r.Context(), userID, priority)
	if err != nil {
		handleError(w, r, err, "tasks_by_priority")
		return
	}
	responseWithData(w, http.StatusOK, dto.FromTaskList(tasks, h.now()), "")
}

func (h *TaskHandler) GetByCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	categoryID, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}

	tasks, err := h.TaskService.GetByCategory(r.Context(), userID, categoryID)
	if err != nil {
		handleError(w, r, err, "tasks_by_category")
		return
	}
	responseWithData(w, http.StatusOK, dto.FromTaskList(tasks, h.now()), "")
}

func (h *TaskHandler) GetOverdue(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	tasks, err := h.TaskService.GetOverdue(r.Context(), userID)
	if err != nil {
		handleError(w, r, err, "overdue_tasks")
		return
	}
	responseWithData(w, http.StatusOK, dto.FromTaskList(tasks, h.now()), "")
}
