package alert

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pulse-telemetry/internal/classifier"
	"pulse-telemetry/internal/models"
)

// Dispatcher 告警分发器
// 仅在指标组整体级别为 critical 时被调用；发送失败只记录日志，
// 不影响消息的落库与确认
type Dispatcher struct {
	notifiers []Notifier
	logger    *zap.Logger
}

// NewDispatcher 创建告警分发器
func NewDispatcher(logger *zap.Logger, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{
		notifiers: notifiers,
		logger:    logger,
	}
}

// BuildMessage 构造告警文本
// 列出指标组内所有 critical 级别的指标（名称/数值/级别）及设备标识
func BuildMessage(group *models.DeviceMetricGroup) string {
	var b strings.Builder

	b.WriteString("🚨 <b>Alert System</b> 🚨\n")
	fmt.Fprintf(&b, "Device: <code>%s</code>\n", group.DeviceID)

	for _, m := range classifier.CriticalMetrics(group.Metrics) {
		fmt.Fprintf(&b, "%s: <b>%.1f%%</b> (%s)\n", m.Name, m.Value, models.SeverityCritical)
	}

	fmt.Fprintf(&b, "Status: %s", models.SeverityCritical)
	return b.String()
}

// Dispatch 向所有已配置的通道发送告警
// 返回成功发送的通道数量
func (d *Dispatcher) Dispatch(ctx context.Context, group *models.DeviceMetricGroup) int {
	message := BuildMessage(group)

	sent := 0
	for _, n := range d.notifiers {
		if err := n.Notify(ctx, message); err != nil {
			d.logger.Error("Failed to send alert notification",
				zap.String("channel", n.Name()),
				zap.String("device_id", group.DeviceID),
				zap.Error(err),
			)
			continue
		}
		sent++
		d.logger.Info("Alert notification sent",
			zap.String("channel", n.Name()),
			zap.String("device_id", group.DeviceID),
		)
	}

	return sent
}
