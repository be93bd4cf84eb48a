package agent

import (
	"context"
	"errors"
	"time"

	"pulse-telemetry/internal/models"
)

// ErrStreamExhausted 指标流已达到发送上限，正常结束
var ErrStreamExhausted = errors.New("metric stream exhausted")

// Streamer 指标流
// 惰性、不可重启的采样序列：每次 Next 返回一组新采样，
// 两次返回之间等待采样间隔，等待期间可被 ctx 取消
type Streamer struct {
	sampler  Sampler
	interval time.Duration
	// sendingLimit 发送上限（0 表示不限制）
	sendingLimit int

	emitted int
	done    bool
}

// NewStreamer 创建指标流
func NewStreamer(sampler Sampler, interval time.Duration, sendingLimit int) *Streamer {
	return &Streamer{
		sampler:      sampler,
		interval:     interval,
		sendingLimit: sendingLimit,
	}
}

// Next 返回下一组采样指标
// 达到发送上限返回 ErrStreamExhausted；等待期间被取消返回 ctx.Err()；
// 采样失败时流终止并返回该错误（不产出残缺指标组）
func (s *Streamer) Next(ctx context.Context) (*models.DeviceMetricGroup, error) {
	if s.done {
		return nil, ErrStreamExhausted
	}
	if s.sendingLimit > 0 && s.emitted >= s.sendingLimit {
		s.done = true
		return nil, ErrStreamExhausted
	}

	// 首组立即产出，之后每组之间等待采样间隔
	if s.emitted > 0 {
		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.done = true
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		s.done = true
		return nil, err
	}

	group, err := s.sampler.Sample()
	if err != nil {
		s.done = true
		return nil, err
	}

	s.emitted++
	return group, nil
}
