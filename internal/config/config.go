package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置（消息交换机所在）
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig MQTT配置（现场告警通道）
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// TelegramConfig Telegram告警通道配置
type TelegramConfig struct {
	BotToken string
	ChatID   string
	// APIBase 可覆盖（测试时指向本地mock）
	APIBase string
}

// Config 全局配置（每个服务只使用自己关心的部分）
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	MQTT     MQTTConfig
	Telegram TelegramConfig

	// 指标交换机配置
	Exchange struct {
		// Stream 指标流名称（即 fanout 交换机 "metrics"）
		Stream string
	}

	// 采集代理配置
	Agent struct {
		DeviceID string
		// IngestURL 摄取端点完整地址
		IngestURL string
		// Interval 采样间隔（秒）
		Interval int
		// SendingLimit 发送上限（0 表示不限制）
		SendingLimit int
		// ConfigFile YAML 配置文件路径（可选，覆盖环境变量）
		ConfigFile string
	}

	// 摄取服务配置
	Ingest struct {
		ListenAddr string
	}

	// 处理服务配置
	Processor struct {
		ConsumerGroup string
		ConsumerName  string
		BatchSize     int64
	}

	// 套餐目录服务配置
	Catalog struct {
		ListenAddr string
		DBPath     string
	}

	// 订阅服务配置
	Subscription struct {
		ListenAddr string
		DBPath     string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "pulse")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "pulse-processor")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_ALERT_TOPIC", "pulse/alerts")
	cfg.MQTT.QoS = byte(getEnvInt("MQTT_QOS", 1))

	cfg.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.Telegram.ChatID = getEnv("TELEGRAM_CHAT_ID", "")
	cfg.Telegram.APIBase = getEnv("TELEGRAM_API_BASE", "https://api.telegram.org")

	cfg.Exchange.Stream = getEnv("METRICS_STREAM", "metrics")

	cfg.Agent.DeviceID = getEnv("DEVICE_ID", "000-010-0001")
	cfg.Agent.IngestURL = getEnv("INGESTION_ENDPOINT", "http://localhost:8001/ingest/metrics")
	cfg.Agent.Interval = getEnvInt("SAMPLING_INTERVAL", 30)
	cfg.Agent.SendingLimit = getEnvInt("SENDING_LIMIT", 0)
	cfg.Agent.ConfigFile = getEnv("AGENT_CONFIG_FILE", "")

	cfg.Ingest.ListenAddr = getEnv("INGEST_LISTEN_ADDR", ":8001")

	cfg.Processor.ConsumerGroup = getEnv("PROCESSOR_CONSUMER_GROUP", "processor-group")
	cfg.Processor.ConsumerName = getEnv("PROCESSOR_CONSUMER_NAME", "pulse-processor-1")
	cfg.Processor.BatchSize = int64(getEnvInt("PROCESSOR_BATCH_SIZE", 10))

	cfg.Catalog.ListenAddr = getEnv("CATALOG_LISTEN_ADDR", ":8002")
	cfg.Catalog.DBPath = getEnv("CATALOG_DB_PATH", "catalog.db")

	cfg.Subscription.ListenAddr = getEnv("SUBSCRIPTION_LISTEN_ADDR", ":8003")
	cfg.Subscription.DBPath = getEnv("SUBSCRIPTION_DB_PATH", "subscription.db")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	// YAML 覆盖（仅代理使用，路径为空时跳过）
	if cfg.Agent.ConfigFile != "" {
		if err := cfg.ApplyAgentFile(cfg.Agent.ConfigFile); err != nil {
			return nil, fmt.Errorf("failed to load agent config file: %w", err)
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}
