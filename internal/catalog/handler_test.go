package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pulse-telemetry/internal/models"
	"pulse-telemetry/internal/repository"
)

// memPackagesRepo 内存实现（仅测试用）
type memPackagesRepo struct {
	items map[string]models.Package
}

func newMemPackagesRepo() *memPackagesRepo {
	return &memPackagesRepo{items: make(map[string]models.Package)}
}

func (m *memPackagesRepo) Create(ctx context.Context, p *models.Package) (*models.Package, error) {
	created := *p
	created.ID = uuid.New().String()
	m.items[created.ID] = created
	return &created, nil
}

func (m *memPackagesRepo) GetByID(ctx context.Context, id string) (*models.Package, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memPackagesRepo) List(ctx context.Context) ([]models.Package, error) {
	var out []models.Package
	for _, p := range m.items {
		out = append(out, p)
	}
	return out, nil
}

func (m *memPackagesRepo) Update(ctx context.Context, p *models.Package) error {
	if _, ok := m.items[p.ID]; !ok {
		return repository.ErrNotFound
	}
	m.items[p.ID] = *p
	return nil
}

func (m *memPackagesRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func setupRouter(t *testing.T) (*memPackagesRepo, *mux.Router) {
	repo := newMemPackagesRepo()
	h := NewHandler(repo, zap.NewNop())
	r := mux.NewRouter()
	h.Register(r)
	return repo, r
}

func doJSON(t *testing.T, r *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreatePackage_GeneratesUUID(t *testing.T) {
	_, r := setupRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/packages", models.Package{
		Name:          "Home Basic",
		SpeedMbps:     50,
		PricePerMonth: 50000,
		Active:        true,
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Package
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	_, err := uuid.Parse(created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Home Basic", created.Name)
}

func TestCreatePackage_MissingName(t *testing.T) {
	_, r := setupRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/packages", models.Package{SpeedMbps: 50})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPackage_NotFound(t *testing.T) {
	_, r := setupRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/packages/"+uuid.New().String(), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPackage_InvalidID(t *testing.T) {
	_, r := setupRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/packages/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPackage_UpdateRoundTrip(t *testing.T) {
	repo, r := setupRouter(t)

	created, err := repo.Create(context.Background(), &models.Package{Name: "Home Basic", SpeedMbps: 50})
	require.NoError(t, err)

	rec := doJSON(t, r, http.MethodPut, "/packages/"+created.ID, models.Package{
		Name:      "Home Plus",
		SpeedMbps: 100,
		Active:    true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Home Plus", updated.Name)
	assert.Equal(t, 100, updated.SpeedMbps)
}

func TestPackage_Delete(t *testing.T) {
	repo, r := setupRouter(t)

	created, err := repo.Create(context.Background(), &models.Package{Name: "Home Basic"})
	require.NoError(t, err)

	rec := doJSON(t, r, http.MethodDelete, "/packages/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err = repo.GetByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListPackages_EmptyIsArray(t *testing.T) {
	_, r := setupRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/packages", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}
