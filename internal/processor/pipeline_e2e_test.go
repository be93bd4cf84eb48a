package processor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pulse-telemetry/internal/alert"
	"pulse-telemetry/internal/exchange"
	"pulse-telemetry/internal/ingest"
	"pulse-telemetry/internal/models"
)

// TestPipeline_IngestToAlertAndRecord 摄取端点到处理工作者的端到端链路：
// cpu_usage=85 的指标组 → 整体 critical → 告警点名 cpu_usage → 落库状态 critical
func TestPipeline_IngestToAlertAndRecord(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := zap.NewNop()

	// 摄取侧
	handler := ingest.NewHandler(client, "metrics", logger)
	body := `{"device_id":"dev-1","metrics":[{"name":"cpu_usage","timestamp":1700000000,"value":85},{"name":"ram_usage","timestamp":1700000000,"value":40}]}` + "\n"
	req := httptest.NewRequest(http.MethodPost, "/ingest/metrics", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.HandleIngest(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var receipt models.IngestionReceipt
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&receipt))
	assert.Equal(t, 1, receipt.Counter)
	assert.Equal(t, models.ReceiptSuccess, receipt.Status)

	// 处理侧
	repo := &fakeAlertsRepo{}
	notifier := &fakeNotifier{}
	dispatcher := alert.NewDispatcher(logger, notifier)
	worker := NewWorker(client, repo, dispatcher, logger, "metrics", "processor-group", "worker-1", 10)

	ctx := context.Background()
	require.NoError(t, exchange.EnsureGroup(ctx, client, "metrics", "processor-group"))
	require.NoError(t, worker.consume(ctx))

	// 告警点名超限指标
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "dev-1")
	assert.Contains(t, notifier.messages[0], "cpu_usage")
	assert.Contains(t, notifier.messages[0], "85.0")
	assert.NotContains(t, notifier.messages[0], "ram_usage")

	// 落库记录保留原始指标组和分类时刻的状态
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, models.SeverityCritical, repo.inserted[0].Status)

	var persisted models.DeviceMetricGroup
	require.NoError(t, json.Unmarshal([]byte(repo.inserted[0].Metrics), &persisted))
	assert.Equal(t, "dev-1", persisted.DeviceID)
	assert.Len(t, persisted.Metrics, 2)
}
