package exchange

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func TestPublishReadAck_RoundTrip(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, EnsureGroup(ctx, client, "metrics", "processor-group"))

	id, err := Publish(ctx, client, "metrics", []byte(`{"device_id":"dev-1"}`))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	messages, err := ReadGroup(ctx, client, "metrics", "processor-group", "consumer-1", 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, id, messages[0].ID)
	assert.Equal(t, []byte(`{"device_id":"dev-1"}`), messages[0].Body)

	require.NoError(t, Ack(ctx, client, "metrics", "processor-group", messages[0].ID))

	// 确认后 pending 列表为空
	pending, err := client.XPending(ctx, "metrics", "processor-group").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)
}

func TestPublish_PreservesOrder(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, EnsureGroup(ctx, client, "metrics", "processor-group"))

	bodies := [][]byte{[]byte("first"), []byte("second"), []byte("third")}
	for _, b := range bodies {
		_, err := Publish(ctx, client, "metrics", b)
		require.NoError(t, err)
	}

	messages, err := ReadGroup(ctx, client, "metrics", "processor-group", "consumer-1", 10)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	for i, b := range bodies {
		assert.Equal(t, b, messages[i].Body)
	}
}

func TestReadGroup_UnackedStaysPending(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, EnsureGroup(ctx, client, "metrics", "processor-group"))

	_, err := Publish(ctx, client, "metrics", []byte("payload"))
	require.NoError(t, err)

	messages, err := ReadGroup(ctx, client, "metrics", "processor-group", "consumer-1", 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	// 未确认的消息保留在 pending 列表（至少一次投递）
	pending, err := client.XPending(ctx, "metrics", "processor-group").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending.Count)
}

func TestEnsureGroup_Idempotent(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, EnsureGroup(ctx, client, "metrics", "processor-group"))
	require.NoError(t, EnsureGroup(ctx, client, "metrics", "processor-group"))
}
