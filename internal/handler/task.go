package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/tareas-api/internal/auth"
	"github.com/BuzzLyutic/tareas-api/internal/model"
	"github.com/BuzzLyutic/tareas-api/internal/repo"
	"github.com/BuzzLyutic/tareas-api/internal/service"
	"github.com/BuzzLyutic/tareas-api/pkg/respond"
)

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	// owner_id из тела игнорируется: владелец берется только из токена
	var req model.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	idempKey := r.Header.Get("Idempotency-Key")
	task, err := h.service.Create(r.Context(), owner, req, idempKey)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/tasks/%d", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), owner, id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := h.service.List(r.Context(), owner, filter)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	var req model.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.service.Update(r.Context(), owner, id, req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), owner, id); err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.Message(w, r, http.StatusOK, "The task was removed successfully")
}

func (h *TaskHandler) ListByDueDate(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	date, err := model.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := h.service.ListByDueDate(r.Context(), owner, date)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) ListByPriority(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	priority, err := strconv.Atoi(chi.URLParam(r, "priority"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid priority")
		return
	}

	tasks, err := h.service.ListByPriority(r.Context(), owner, priority)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	// chi матчит по RawPath, если он задан (например, есть %2F); тогда параметр еще экранирован
	category := chi.URLParam(r, "category")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(category)
		if err != nil {
			respond.Error(w, r, http.StatusBadRequest, "invalid category")
			return
		}
		category = unescaped
	}

	tasks, err := h.service.ListByCategory(r.Context(), owner, category)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) MarkComplete(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	task, err := h.service.MarkComplete(r.Context(), owner, id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) ListIncomplete(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	tasks, err := h.service.ListIncomplete(r.Context(), owner)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) DeleteCompleted(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteCompleted(r.Context(), owner); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.Message(w, r, http.StatusOK, "All completed tasks were removed successfully")
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	stats, err := h.service.GetStats(r.Context(), owner)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, stats)
}

// owner достает владельца, положенного middleware. Без него - 401
func (h *TaskHandler) owner(w http.ResponseWriter, r *http.Request) (model.OwnerID, bool) {
	owner, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "invalid credentials")
	}
	return owner, ok
}

func (h *TaskHandler) ownerAndID(w http.ResponseWriter, r *http.Request) (model.OwnerID, int64, bool) {
	owner, ok := h.owner(w, r)
	if !ok {
		return 0, 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		respond.Error(w, r, http.StatusBadRequest, "invalid id")
		return 0, 0, false
	}
	return owner, id, true
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "The requested task was not found")
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, "conflict")
	case errors.Is(err, service.ErrValidation), errors.Is(err, repo.ErrorInvalid):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, repo.ErrorUnavailable):
		h.logger.Error("store unavailable", zap.Error(err))
		respond.Error(w, r, http.StatusServiceUnavailable, "store unavailable")
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
