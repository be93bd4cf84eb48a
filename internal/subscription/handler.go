package subscription

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"pulse-telemetry/internal/models"
	"pulse-telemetry/internal/repository"
)

// Handler 订阅CRUD接口
type Handler struct {
	repo   repository.SubscriptionsRepository
	logger *zap.Logger
}

// NewHandler 创建订阅接口
func NewHandler(repo repository.SubscriptionsRepository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// Register 注册路由
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/subscriptions", h.HandleCreate).Methods(http.MethodPost)
	r.HandleFunc("/subscriptions", h.HandleList).Methods(http.MethodGet)
	r.HandleFunc("/subscriptions/{id}", h.HandleGet).Methods(http.MethodGet)
	r.HandleFunc("/subscriptions/{id}", h.HandleUpdate).Methods(http.MethodPut)
	r.HandleFunc("/subscriptions/{id}", h.HandleDelete).Methods(http.MethodDelete)
}

// validStatus 订阅状态取值校验
func validStatus(s models.SubscriptionStatus) bool {
	switch s {
	case "", models.SubscriptionPending, models.SubscriptionActive, models.SubscriptionCancelled:
		return true
	}
	return false
}

// HandleCreate POST /subscriptions
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var s models.Subscription
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if s.CustomerName == "" {
		writeError(w, http.StatusBadRequest, "customer_name is required")
		return
	}
	if _, err := uuid.Parse(s.PackageID); err != nil {
		writeError(w, http.StatusBadRequest, "package_id must be a valid uuid")
		return
	}
	if !validStatus(s.Status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	created, err := h.repo.Create(r.Context(), &s)
	if err != nil {
		h.logger.Error("Failed to create subscription", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create subscription")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// HandleList GET /subscriptions
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	subscriptions, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list subscriptions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}
	if subscriptions == nil {
		subscriptions = []models.Subscription{}
	}

	writeJSON(w, http.StatusOK, subscriptions)
}

// HandleGet GET /subscriptions/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "subscription not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to get subscription", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get subscription")
		return
	}

	writeJSON(w, http.StatusOK, s)
}

// HandleUpdate PUT /subscriptions/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var s models.Subscription
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validStatus(s.Status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	s.ID = id

	err := h.repo.Update(r.Context(), &s)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "subscription not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to update subscription", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update subscription")
		return
	}

	writeJSON(w, http.StatusOK, &s)
}

// HandleDelete DELETE /subscriptions/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := h.repo.Delete(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "subscription not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete subscription", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete subscription")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathID 解析并校验路径中的UUID
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return "", false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
