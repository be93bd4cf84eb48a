package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"pulse-telemetry/internal/alert"
	"pulse-telemetry/internal/classifier"
	"pulse-telemetry/internal/exchange"
	"pulse-telemetry/internal/models"
	"pulse-telemetry/internal/repository"
)

// Worker 指标处理工作者
// 以竞争消费者身份消费交换机流，对每条消息依次执行：
// 解码 → 分类 → critical 时告警 → 落库 → 确认。
// 解码失败的消息直接确认丢弃（避免毒消息循环）；落库失败同样确认
// （接受至多一次的持久化语义），但与解码失败分开记录
type Worker struct {
	redisClient *redis.Client
	alertsRepo  repository.AlertsRepository
	dispatcher  *alert.Dispatcher
	logger      *zap.Logger

	stream       string
	group        string
	consumerName string
	batchSize    int64
}

// NewWorker 创建处理工作者
func NewWorker(
	redisClient *redis.Client,
	alertsRepo repository.AlertsRepository,
	dispatcher *alert.Dispatcher,
	logger *zap.Logger,
	stream string,
	group string,
	consumerName string,
	batchSize int64,
) *Worker {
	return &Worker{
		redisClient:  redisClient,
		alertsRepo:   alertsRepo,
		dispatcher:   dispatcher,
		logger:       logger,
		stream:       stream,
		group:        group,
		consumerName: consumerName,
		batchSize:    batchSize,
	}
}

// Start 启动消费循环，直到 ctx 取消
// 传输层错误按指数退避重试，不会终止循环
func (w *Worker) Start(ctx context.Context) error {
	if err := exchange.EnsureGroup(ctx, w.redisClient, w.stream, w.group); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	w.logger.Info("Processor worker started",
		zap.String("stream", w.stream),
		zap.String("consumer_group", w.group),
		zap.String("consumer_name", w.consumerName),
	)

	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := w.consume(ctx); err != nil {
				w.logger.Error("Failed to consume messages",
					zap.Error(err),
					zap.Duration("backoff", backoffDuration),
				)

				select {
				case <-ctx.Done():
					return nil
				case <-time.After(backoffDuration):
					backoffDuration *= 2
					if backoffDuration > maxBackoff {
						backoffDuration = maxBackoff
					}
				}
			} else {
				backoffDuration = time.Second
			}
		}
	}
}

// consume 读取一批消息并逐条处理
func (w *Worker) consume(ctx context.Context) error {
	messages, err := exchange.ReadGroup(ctx, w.redisClient, w.stream, w.group, w.consumerName, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, msg := range messages {
		// 消息一旦取到就处理到确认为止，不在中途响应取消
		w.processMessage(ctx, msg)
	}

	return nil
}

// processMessage 处理单条消息，结束时必定确认
func (w *Worker) processMessage(ctx context.Context, msg exchange.StreamMessage) {
	defer w.ack(ctx, msg.ID)

	// Receiving: 反序列化消息体
	var group models.DeviceMetricGroup
	if err := json.Unmarshal(msg.Body, &group); err != nil {
		w.logger.Error("Dropping undecodable message",
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
		return
	}
	if err := group.Validate(); err != nil {
		w.logger.Error("Dropping invalid metric group",
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
		return
	}

	// Classifying
	overall := classifier.ClassifyGroup(group.Metrics)

	w.logger.Info("Metric group classified",
		zap.String("message_id", msg.ID),
		zap.String("device_id", group.DeviceID),
		zap.String("status", string(overall)),
	)

	// Dispatching: 仅 critical 触发告警，发送结果不影响后续落库
	if overall == models.SeverityCritical {
		w.dispatcher.Dispatch(ctx, &group)
	}

	// Persisting: 落库失败仍然确认，但与解码失败分开记录
	if _, err := w.alertsRepo.Insert(ctx, group.DeviceID, overall, string(msg.Body)); err != nil {
		w.logger.Error("Failed to persist classified metric group",
			zap.String("message_id", msg.ID),
			zap.String("device_id", group.DeviceID),
			zap.Error(err),
		)
	}
}

// ack 确认消息（Acknowledging 状态）
func (w *Worker) ack(ctx context.Context, id string) {
	if err := exchange.Ack(ctx, w.redisClient, w.stream, w.group, id); err != nil {
		w.logger.Warn("Failed to ack message",
			zap.String("message_id", id),
			zap.Error(err),
		)
	}
}
