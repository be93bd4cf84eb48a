package exchange

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// 消息体在 stream entry 中的字段名
const bodyField = "body"

// StreamMessage Redis Streams 消息
type StreamMessage struct {
	Stream string
	ID     string
	Body   []byte
}

// Publish 发布一条原始消息体到指定流（即 fanout 交换机）
// 同一调用方的多次 Publish 保证按调用顺序写入流
func Publish(ctx context.Context, client *redis.Client, stream string, body []byte) (string, error) {
	id, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{bodyField: string(body)},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to publish to stream %s: %w", stream, err)
	}
	return id, nil
}

// ReadGroup 以消费者组方式读取消息（竞争消费者语义）
// 无新消息时最多阻塞 5 秒后返回空列表
func ReadGroup(ctx context.Context, client *redis.Client, stream, group, consumer string, count int64) ([]StreamMessage, error) {
	streams, err := client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    time.Second * 5,
	}).Result()

	if err != nil {
		if err == redis.Nil {
			return []StreamMessage{}, nil
		}
		return nil, err
	}

	var messages []StreamMessage
	for _, s := range streams {
		for _, msg := range s.Messages {
			var body []byte
			if v, ok := msg.Values[bodyField].(string); ok {
				body = []byte(v)
			}
			messages = append(messages, StreamMessage{
				Stream: s.Stream,
				ID:     msg.ID,
				Body:   body,
			})
		}
	}

	return messages, nil
}

// Ack 确认消息已处理（XACK 之后消息从组的 pending 列表移除）
func Ack(ctx context.Context, client *redis.Client, stream, group string, ids ...string) error {
	return client.XAck(ctx, stream, group, ids...).Err()
}

// EnsureGroup 创建消费者组（流不存在时一并创建，组已存在则忽略）
func EnsureGroup(ctx context.Context, client *redis.Client, stream, group string) error {
	err := client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group %s on %s: %w", group, stream, err)
	}
	return nil
}
