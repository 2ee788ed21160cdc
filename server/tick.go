package server

import (
	"context"
	"time"
)

const (
	// TicksPerSecond 默认世界推进频率（与原版一致的 60 UPS）
	TicksPerSecond = 60
)

func tickInterval(rate int) time.Duration {
	return time.Second / time.Duration(rate)
}

// Step 执行一个完整 Tick：处理输入 → 更新世界 → 广播结果
func (r *Room) Step() {
	start := time.Now()
	r.mu.Lock()
	r.BeginTick()
	r.ProcessInputs()
	if res, ok := r.UpdateWorld(); ok {
		r.BroadcastDelta(res)
	}
	r.mu.Unlock()
	r.metrics.AddTick(time.Since(start).Nanoseconds())
}

// StartTicker 启动房间的 Tick 循环（单线程推进世界），ctx 取消或 Stop 后退出
func (r *Room) StartTicker(ctx context.Context) {
	if r.tickerStarted {
		return
	}
	r.tickerStarted = true
	ctx, cancel := context.WithCancel(ctx)
	r.stop = cancel
	go func() {
		ticker := time.NewTicker(tickInterval(r.tickRate))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				r.Stop()
				Log.Infow("room ticker stopped", "room", r.ID, "tick", r.TickSeq())
				return
			case <-r.done:
				Log.Infow("room ticker stopped", "room", r.ID, "tick", r.TickSeq())
				return
			case <-ticker.C:
				r.Step()
			}
		}
	}()
}

// Stop 停止 Tick 循环，可重复调用
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		if r.stop != nil {
			r.stop()
		}
	})
}
