package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// agentFile 代理 YAML 配置文件结构
// 字段为指针以区分"未设置"和"显式零值"
type agentFile struct {
	DeviceID     *string `yaml:"device_id"`
	IngestURL    *string `yaml:"ingest_url"`
	Interval     *int    `yaml:"interval_seconds"`
	SendingLimit *int    `yaml:"sending_limit"`
	LogLevel     *string `yaml:"log_level"`
}

// ApplyAgentFile 读取 YAML 文件并覆盖代理相关配置
func (c *Config) ApplyAgentFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var f agentFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if f.DeviceID != nil {
		c.Agent.DeviceID = *f.DeviceID
	}
	if f.IngestURL != nil {
		c.Agent.IngestURL = *f.IngestURL
	}
	if f.Interval != nil && *f.Interval > 0 {
		c.Agent.Interval = *f.Interval
	}
	if f.SendingLimit != nil && *f.SendingLimit >= 0 {
		c.Agent.SendingLimit = *f.SendingLimit
	}
	if f.LogLevel != nil {
		c.Log.Level = *f.LogLevel
	}

	return nil
}
