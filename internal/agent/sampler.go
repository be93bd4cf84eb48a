package agent

import (
	"fmt"
	"sync"
	"time"

	"pulse-telemetry/internal/models"
)

// 采样指标名称
const (
	MetricCPUUsage = "cpu_usage"
	MetricRAMUsage = "ram_usage"
)

// Sampler 指标采样器
type Sampler interface {
	Sample() (*models.DeviceMetricGroup, error)
}

// SystemSampler 读取宿主机CPU/RAM占用率
// CPU 占用率基于 /proc/stat 两次采样的差值，首次采样返回 0
type SystemSampler struct {
	deviceID string

	mu        sync.Mutex
	prevBusy  uint64
	prevTotal uint64
	inited    bool
}

// NewSystemSampler 创建系统采样器
func NewSystemSampler(deviceID string) *SystemSampler {
	return &SystemSampler{deviceID: deviceID}
}

var _ Sampler = (*SystemSampler)(nil)

// Sample 采样一组指标（cpu_usage + ram_usage，共用同一时间戳）
func (s *SystemSampler) Sample() (*models.DeviceMetricGroup, error) {
	cpu, err := s.cpuPercent()
	if err != nil {
		return nil, fmt.Errorf("failed to sample cpu usage: %w", err)
	}

	ram, err := ramPercent()
	if err != nil {
		return nil, fmt.Errorf("failed to sample ram usage: %w", err)
	}

	ts := float64(time.Now().UTC().Unix())
	return &models.DeviceMetricGroup{
		DeviceID: s.deviceID,
		Metrics: []models.DeviceMetric{
			{Name: MetricCPUUsage, Timestamp: ts, Value: cpu},
			{Name: MetricRAMUsage, Timestamp: ts, Value: ram},
		},
	}, nil
}
