package ingest

import (
	"bufio"
	"encoding/json"
	"net/http"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"pulse-telemetry/internal/exchange"
	"pulse-telemetry/internal/models"
)

// 请求体单块的最大长度（一组指标远小于此值）
const maxChunkBytes = 1 << 20

// Handler 指标摄取端点
// 请求体是一串 NDJSON 块，每块是一个完整的指标组；
// 逐块原样转发到交换机流并计数，块内顺序与写入顺序一致
type Handler struct {
	redisClient *redis.Client
	stream      string
	logger      *zap.Logger
}

// NewHandler 创建摄取端点
func NewHandler(redisClient *redis.Client, stream string, logger *zap.Logger) *Handler {
	return &Handler{
		redisClient: redisClient,
		stream:      stream,
		logger:      logger,
	}
}

// HandleIngest POST /ingest/metrics
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	counter := 0
	scanner := bufio.NewScanner(r.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxChunkBytes)

	for scanner.Scan() {
		chunk := scanner.Bytes()
		if len(chunk) == 0 {
			continue
		}

		// 摄取边界做结构校验：块必须是带 device_id 的指标组
		var group models.DeviceMetricGroup
		if err := json.Unmarshal(chunk, &group); err != nil {
			h.logger.Warn("Rejected malformed metric chunk", zap.Error(err))
			h.writeReceipt(w, http.StatusBadRequest, models.IngestionReceipt{
				Counter: counter,
				Status:  models.ReceiptError,
				Msg:     "invalid metric payload: " + err.Error(),
			})
			return
		}
		if err := group.Validate(); err != nil {
			h.logger.Warn("Rejected metric chunk failing validation", zap.Error(err))
			h.writeReceipt(w, http.StatusBadRequest, models.IngestionReceipt{
				Counter: counter,
				Status:  models.ReceiptError,
				Msg:     err.Error(),
			})
			return
		}

		// 原样转发（发布的是原始块，不是重新序列化的结构）
		if _, err := exchange.Publish(r.Context(), h.redisClient, h.stream, append([]byte(nil), chunk...)); err != nil {
			h.logger.Error("Failed to publish metric chunk",
				zap.String("stream", h.stream),
				zap.Error(err),
			)
			h.writeReceipt(w, http.StatusBadGateway, models.IngestionReceipt{
				Counter: counter,
				Status:  models.ReceiptError,
				Msg:     "metrics exchange unavailable: " + err.Error(),
			})
			return
		}

		counter++
	}

	if err := scanner.Err(); err != nil {
		h.logger.Warn("Metric stream read aborted", zap.Error(err))
		h.writeReceipt(w, http.StatusBadRequest, models.IngestionReceipt{
			Counter: counter,
			Status:  models.ReceiptError,
			Msg:     "failed to read request body: " + err.Error(),
		})
		return
	}

	h.logger.Info("Ingestion request completed", zap.Int("counter", counter))
	h.writeReceipt(w, http.StatusOK, models.IngestionReceipt{
		Counter: counter,
		Status:  models.ReceiptSuccess,
		Msg:     "forwarded to exchange",
	})
}

// HandleHealth GET /healthz
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := exchange.Ping(r.Context(), h.redisClient); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) writeReceipt(w http.ResponseWriter, status int, receipt models.IngestionReceipt) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(receipt); err != nil {
		h.logger.Error("Failed to write ingestion receipt", zap.Error(err))
	}
}
