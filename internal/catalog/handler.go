package catalog

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

// Handler 套餐目录CRUD接口
type Handler struct {
	repo   repository.PackagesRepository
	logger *zap.Logger
}

// NewHandler 创建套餐目录接口
func NewHandler(repo repository.PackagesRepository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// Register 注册路由
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/packages", h.HandleCreate).Methods(http.MethodPost)
	r.HandleFunc("/packages", h.HandleList).Methods(http.MethodGet)
	r.HandleFunc("/packages/{id}", h.HandleGet).Methods(http.MethodGet)
	r.HandleFunc("/packages/{id}", h.HandleUpdate).Methods(http.MethodPut)
	r.HandleFunc("/packages/{id}", h.HandleDelete).Methods(http.MethodDelete)
}

// HandleCreate POST /packages
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var p models.Package
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	created, err := h.repo.Create(r.Context(), &p)
	if err != nil {
		h.logger.Error("Failed to create package", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create package")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// HandleList GET /packages
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	packages, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list packages", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list packages")
		return
	}
	if packages == nil {
		packages = []models.Package{}
	}

	writeJSON(w, http.StatusOK, packages)
}

// HandleGet GET /packages/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "package not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to get package", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get package")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// HandleUpdate PUT /packages/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var p models.Package
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p.ID = id

	err := h.repo.Update(r.Context(), &p)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "package not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to update package", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update package")
		return
	}

	writeJSON(w, http.StatusOK, &p)
}

// HandleDelete DELETE /packages/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := h.repo.Delete(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "package not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete package", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete package")
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
