// 包 refresh：服务进程内的后台刷新任务（标注重读、陆地每日重新加载）
package refresh

import (
	"context"
	"time"

	"dotglobe/internal/logger"
)

// Task 一次刷新；错误记录日志，任务继续调度
type Task func(ctx context.Context) error

// nextDailyAt：下一次 UTC 整点 hour 的时间点（严格晚于 now）
func nextDailyAt(now time.Time, hour int) time.Time {
	now = now.UTC()
	t := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// Every 按固定间隔运行 task，直到 ctx 取消；d<=0 时不启动
func Every(ctx context.Context, d time.Duration, name string, task Task) {
	if d <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(d)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				run(ctx, name, task)
			}
		}
	}()
}

// 文档注释：每日定时
// 背景：上游数据集更新很慢，每天在低峰整点（UTC）重新拉取一次即可。
// 约束：hour 不在 0..23 时不启动；运行于后台协程，ctx 取消后退出。
func Daily(ctx context.Context, hour int, name string, task Task) {
	if hour < 0 || hour > 23 {
		return
	}
	go func() {
		for {
			next := nextDailyAt(time.Now(), hour)
			logger.L().Debug("refresh_scheduled", "task", name, "next", next)
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				run(ctx, name, task)
			}
		}
	}()
}

func run(ctx context.Context, name string, task Task) {
	l := logger.L()
	t0 := time.Now()
	l.Info("refresh_start", "task", name)
	if err := task(ctx); err != nil {
		l.Warn("refresh_failed", "task", name, "err", err)
		return
	}
	l.Info("refresh_done", "task", name, "duration_ms", time.Since(t0).Milliseconds())
}
