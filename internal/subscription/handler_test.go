package subscription

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pulse-telemetry/internal/models"
	"pulse-telemetry/internal/repository"
)

// memSubscriptionsRepo 内存实现（仅测试用）
type memSubscriptionsRepo struct {
	items map[string]models.Subscription
}

func newMemSubscriptionsRepo() *memSubscriptionsRepo {
	return &memSubscriptionsRepo{items: make(map[string]models.Subscription)}
}

func (m *memSubscriptionsRepo) Create(ctx context.Context, s *models.Subscription) (*models.Subscription, error) {
	created := *s
	created.ID = uuid.New().String()
	if created.StartDate == 0 {
		created.StartDate = float64(time.Now().Unix())
	}
	if created.Status == "" {
		created.Status = models.SubscriptionPending
	}
	m.items[created.ID] = created
	return &created, nil
}

func (m *memSubscriptionsRepo) GetByID(ctx context.Context, id string) (*models.Subscription, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (m *memSubscriptionsRepo) List(ctx context.Context) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, s := range m.items {
		out = append(out, s)
	}
	return out, nil
}

func (m *memSubscriptionsRepo) Update(ctx context.Context, s *models.Subscription) error {
	if _, ok := m.items[s.ID]; !ok {
		return repository.ErrNotFound
	}
	m.items[s.ID] = *s
	return nil
}

func (m *memSubscriptionsRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func setupRouter(t *testing.T) (*memSubscriptionsRepo, *mux.Router) {
	repo := newMemSubscriptionsRepo()
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

func TestCreateSubscription_Defaults(t *testing.T) {
	_, r := setupRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/subscriptions", models.Subscription{
		CustomerName: "Alice",
		PhoneNumber:  "0900000001",
		PackageID:    uuid.New().String(),
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Subscription
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.SubscriptionPending, created.Status)
	assert.Greater(t, created.StartDate, float64(0))
}

func TestCreateSubscription_InvalidPackageID(t *testing.T) {
	_, r := setupRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/subscriptions", models.Subscription{
		CustomerName: "Alice",
		PackageID:    "not-a-uuid",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateSubscription_InvalidStatus(t *testing.T) {
	repo, r := setupRouter(t)

	created, err := repo.Create(context.Background(), &models.Subscription{
		CustomerName: "Alice",
		PackageID:    uuid.New().String(),
	})
	require.NoError(t, err)

	rec := doJSON(t, r, http.MethodPut, "/subscriptions/"+created.ID, map[string]string{
		"customer_name": "Alice",
		"status":        "paused",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubscription_StatusTransition(t *testing.T) {
	repo, r := setupRouter(t)

	created, err := repo.Create(context.Background(), &models.Subscription{
		CustomerName: "Alice",
		PhoneNumber:  "0900000001",
		PackageID:    uuid.New().String(),
	})
	require.NoError(t, err)

	updated := *created
	updated.Status = models.SubscriptionActive
	rec := doJSON(t, r, http.MethodPut, "/subscriptions/"+created.ID, updated)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, stored.Status)
}

func TestDeleteSubscription_NotFound(t *testing.T) {
	_, r := setupRouter(t)

	rec := doJSON(t, r, http.MethodDelete, "/subscriptions/"+uuid.New().String(), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
