package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"pulse-telemetry/internal/config"
)

// Notifier 外部告警通道
type Notifier interface {
	Notify(ctx context.Context, text string) error
	Name() string
}

// TelegramNotifier 通过 Telegram Bot API 发送告警
type TelegramNotifier struct {
	cfg        *config.TelegramConfig
	httpClient *http.Client
}

// NewTelegramNotifier 创建Telegram告警通道
func NewTelegramNotifier(cfg *config.TelegramConfig) *TelegramNotifier {
	return &TelegramNotifier{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (n *TelegramNotifier) Name() string {
	return "telegram"
}

// Notify 调用 sendMessage 接口
func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", n.cfg.APIBase, n.cfg.BotToken)

	payload := map[string]string{
		"chat_id":    n.cfg.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send telegram alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// 读取响应片段便于排查（Bot API 返回 JSON 错误描述）
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram API returned status %d: %s", resp.StatusCode, string(detail))
	}

	return nil
}

// MQTTNotifier 将告警文本发布到 MQTT 主题（现场声光报警器订阅）
type MQTTNotifier struct {
	client mqtt.Client
	topic  string
	qos    byte
}

// NewMQTTNotifier 创建MQTT告警通道
func NewMQTTNotifier(cfg *config.MQTTConfig) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTNotifier{
		client: client,
		topic:  cfg.Topic,
		qos:    cfg.QoS,
	}, nil
}

func (n *MQTTNotifier) Name() string {
	return "mqtt"
}

// Notify 发布告警文本
func (n *MQTTNotifier) Notify(ctx context.Context, text string) error {
	token := n.client.Publish(n.topic, n.qos, false, []byte(text))
	token.Wait()

	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", n.topic, token.Error())
	}

	return nil
}

// Disconnect 断开连接
func (n *MQTTNotifier) Disconnect() {
	n.client.Disconnect(250)
}
