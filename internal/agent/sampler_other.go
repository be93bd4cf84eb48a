//go:build !linux

package agent

import "fmt"

func (s *SystemSampler) cpuPercent() (float64, error) {
	return 0, fmt.Errorf("system sampling is only supported on linux")
}

func ramPercent() (float64, error) {
	return 0, fmt.Errorf("system sampling is only supported on linux")
}
