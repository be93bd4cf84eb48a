//go:build linux

package agent

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// cpuPercent 读取 /proc/stat 首行并基于上次采样的差值计算占用率
func (s *SystemSampler) cpuPercent() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open("/proc/stat")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return 0, fmt.Errorf("empty /proc/stat")
	}

	// 首行格式: "cpu  user nice system idle iowait irq softirq steal ..."
	fields := strings.Fields(scanner.Text())
	if len(fields) < 5 || fields[0] != "cpu" {
		return 0, fmt.Errorf("unexpected /proc/stat format")
	}

	var busy, total uint64
	for i := 1; i < len(fields); i++ {
		v, err := strconv.ParseUint(fields[i], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse /proc/stat field %d: %w", i, err)
		}
		total += v
		// idle(4) 与 iowait(5) 之外都计为 busy
		if i != 4 && i != 5 {
			busy += v
		}
	}

	if !s.inited {
		s.prevBusy, s.prevTotal = busy, total
		s.inited = true
		return 0, nil
	}

	dBusy := busy - s.prevBusy
	dTotal := total - s.prevTotal
	s.prevBusy, s.prevTotal = busy, total

	if dTotal == 0 {
		return 0, nil
	}
	return float64(dBusy) / float64(dTotal) * 100, nil
}

// ramPercent 通过 Sysinfo 计算内存占用率
func ramPercent() (float64, error) {
	var info syscall.Sysinfo_t
	if err := syscall.Sysinfo(&info); err != nil {
		return 0, err
	}

	unit := uint64(info.Unit)
	total := info.Totalram * unit
	if total == 0 {
		return 0, fmt.Errorf("sysinfo reported zero total ram")
	}

	free := info.Freeram * unit
	buffers := info.Bufferram * unit
	used := total - free - buffers
	return float64(used) / float64(total) * 100, nil
}
