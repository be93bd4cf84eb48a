package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pulse-telemetry/internal/models"
)

// IngestionClient 指标推送客户端
// 驱动 Streamer 并将每组指标以 NDJSON 块的形式写入摄取端点的流式请求体；
// 单次发送失败不会终止整个推送循环（退避后重建请求继续）
type IngestionClient struct {
	streamer   *Streamer
	endpoint   string
	logger     *zap.Logger
	httpClient *http.Client

	// 发送失败后的重试退避区间
	retryBackoff time.Duration
	maxBackoff   time.Duration
}

// NewIngestionClient 创建指标推送客户端
func NewIngestionClient(streamer *Streamer, endpoint string, logger *zap.Logger) *IngestionClient {
	return &IngestionClient{
		streamer: streamer,
		endpoint: endpoint,
		logger:   logger,
		// 流式请求体生命周期不定，不设整体超时，由 ctx 控制
		httpClient:   &http.Client{},
		retryBackoff: time.Second,
		maxBackoff:   30 * time.Second,
	}
}

// Run 持续推送采样指标，直到流结束或 ctx 取消
// 取消是协作式的：当前挂起点观察到取消信号后干净退出，返回 nil
func (c *IngestionClient) Run(ctx context.Context) error {
	backoff := c.retryBackoff

	for {
		finished, err := c.streamOnce(ctx)
		if finished {
			return err
		}

		c.logger.Warn("Metric send failed, retrying",
			zap.Error(err),
			zap.Duration("backoff", backoff),
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
			backoff *= 2
			if backoff > c.maxBackoff {
				backoff = c.maxBackoff
			}
		}
	}
}

// streamOnce 建立一次流式请求并持续写入指标组
// 返回 finished=true 表示流已结束（正常结束、取消或采样失败）；
// finished=false 表示传输层失败，剩余的流可以重试
func (c *IngestionClient) streamOnce(ctx context.Context) (bool, error) {
	pr, pw := io.Pipe()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, pr)
	if err != nil {
		return true, fmt.Errorf("failed to build ingestion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")

	respCh := make(chan error, 1)
	go func() {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			// 让挂起的写入立即失败
			pr.CloseWithError(err)
			respCh <- err
			return
		}
		defer resp.Body.Close()

		var receipt models.IngestionReceipt
		if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
			respCh <- fmt.Errorf("failed to decode ingestion receipt: %w", err)
			return
		}

		c.logger.Info("Ingestion receipt received",
			zap.Int("counter", receipt.Counter),
			zap.String("status", receipt.Status),
		)

		if receipt.Status != models.ReceiptSuccess {
			respCh <- fmt.Errorf("ingestion endpoint reported error: %s", receipt.Msg)
			return
		}
		respCh <- nil
	}()

	enc := json.NewEncoder(pw)
	var streamErr error

	for {
		group, err := c.streamer.Next(ctx)
		if err != nil {
			if !errors.Is(err, ErrStreamExhausted) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				// 采样失败：按既定策略终止整个流
				streamErr = err
			}
			break
		}

		if err := enc.Encode(group); err != nil {
			pw.CloseWithError(err)
			<-respCh
			return false, err
		}

		c.logger.Debug("Metric group sent",
			zap.String("device_id", group.DeviceID),
			zap.Int("metrics", len(group.Metrics)),
		)
	}

	pw.Close()
	respErr := <-respCh

	if ctx.Err() != nil {
		return true, nil
	}
	if streamErr != nil {
		return true, streamErr
	}
	return true, respErr
}
