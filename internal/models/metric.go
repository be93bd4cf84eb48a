package models

import (
	"errors"
	"time"
)

// Severity 设备状态严重级别
type Severity string

const (
	SeverityNormal   Severity = "normal"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// rank 严重级别优先级（critical > warning > normal）
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// Exceeds 判断 s 的优先级是否高于 other
func (s Severity) Exceeds(other Severity) bool {
	return s.rank() > other.rank()
}

// DeviceMetric 单条设备指标（创建后不再修改）
type DeviceMetric struct {
	Name      string  `json:"name"`
	Timestamp float64 `json:"timestamp"`
	Value     float64 `json:"value"`
}

// DeviceMetricGroup 一次采样产生的指标组
// Metrics 顺序即采样顺序
type DeviceMetricGroup struct {
	DeviceID string         `json:"device_id"`
	Metrics  []DeviceMetric `json:"metrics"`
}

// ErrMissingDeviceID 指标组缺少设备标识
var ErrMissingDeviceID = errors.New("device metric group missing device_id")

// Validate 校验指标组（摄取边界做结构校验，Metrics 允许为空）
func (g *DeviceMetricGroup) Validate() error {
	if g.DeviceID == "" {
		return ErrMissingDeviceID
	}
	return nil
}

// IngestionReceipt 摄取回执（同步返回调用方，不落库）
type IngestionReceipt struct {
	Counter int    `json:"counter"`
	Status  string `json:"status"`
	Msg     string `json:"msg"`
}

const (
	ReceiptSuccess = "success"
	ReceiptError   = "error"
)

// AlertRecord 分类后落库的告警记录
// Status 为分类时刻计算的整体级别，之后不再重算
type AlertRecord struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"device_id"`
	Status    Severity  `json:"status"`
	Metrics   string    `json:"metrics"`
	CreatedAt time.Time `json:"created_at"`
}
