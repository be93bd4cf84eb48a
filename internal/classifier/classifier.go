package classifier

import (
	"pulse-telemetry/internal/models"
)

// 分类阈值
// 历史上 warning 下界出现过 60 与 61 两个版本，这里固定为 61：
// value >= 80 -> critical；61 <= value < 80 -> warning；value < 61 -> normal
const (
	ThresholdCritical = 80
	ThresholdWarning  = 61
)

// ClassifyMetric 将单条指标值映射为严重级别
func ClassifyMetric(value float64) models.Severity {
	switch {
	case value >= ThresholdCritical:
		return models.SeverityCritical
	case value >= ThresholdWarning:
		return models.SeverityWarning
	default:
		return models.SeverityNormal
	}
}

// ClassifyGroup 计算指标组的整体严重级别
// 按 critical > warning > normal 归约，空指标组为 normal
func ClassifyGroup(metrics []models.DeviceMetric) models.Severity {
	overall := models.SeverityNormal
	for _, m := range metrics {
		if s := ClassifyMetric(m.Value); s.Exceeds(overall) {
			overall = s
		}
	}
	return overall
}

// CriticalMetrics 返回指标组中所有 critical 级别的指标（保持原顺序）
func CriticalMetrics(metrics []models.DeviceMetric) []models.DeviceMetric {
	var critical []models.DeviceMetric
	for _, m := range metrics {
		if ClassifyMetric(m.Value) == models.SeverityCritical {
			critical = append(critical, m)
		}
	}
	return critical
}
