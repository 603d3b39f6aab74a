package refresh

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"dotglobe/internal/logger"
)

func TestNextDailyAt(t *testing.T) {
	now := time.Date(2024, 3, 10, 2, 30, 0, 0, time.UTC)
	if got := nextDailyAt(now, 3); !got.Equal(time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC)) {
		t.Errorf("later today: %v", got)
	}
	if got := nextDailyAt(now, 2); !got.Equal(time.Date(2024, 3, 11, 2, 0, 0, 0, time.UTC)) {
		t.Errorf("already passed: %v", got)
	}
	exact := time.Date(2024, 3, 10, 4, 0, 0, 0, time.UTC)
	if got := nextDailyAt(exact, 4); !got.Equal(exact.AddDate(0, 0, 1)) {
		t.Errorf("exact hour should move to tomorrow: %v", got)
	}
	loc := time.FixedZone("UTC+8", 8*3600)
	local := time.Date(2024, 3, 10, 9, 0, 0, 0, loc) // 01:00 UTC
	if got := nextDailyAt(local, 3); !got.Equal(time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC)) {
		t.Errorf("zone: %v", got)
	}
}

func TestEveryRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var n atomic.Int32
	done := make(chan struct{}, 8)
	Every(ctx, 5*time.Millisecond, "test", func(context.Context) error {
		n.Add(1)
		select {
		case done <- struct{}{}:
		default:
		}
		return errors.New("keeps going")
	})
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("task did not run")
		}
	}
	cancel()
	if n.Load() < 2 {
		t.Fatalf("runs = %d", n.Load())
	}
}

func TestDisabledSchedules(t *testing.T) {
	called := false
	task := func(context.Context) error { called = true; return nil }
	Every(context.Background(), 0, "off", task)
	Daily(context.Background(), -1, "off", task)
	Daily(context.Background(), 24, "off", task)
	time.Sleep(10 * time.Millisecond)
	if called {
		t.Fatal("disabled schedule ran")
	}
}

func TestFailedTaskLogsWarning(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	var buf bytes.Buffer
	logger.SetupWriter(&buf)
	defer logger.SetupWriter(&bytes.Buffer{})
	run(context.Background(), "land", func(context.Context) error { return errors.New("upstream 503") })
	out := buf.String()
	if !strings.Contains(out, `"msg":"refresh_failed"`) || !strings.Contains(out, `"level":"WARN"`) {
		t.Fatalf("want WARN refresh_failed, got:\n%s", out)
	}
}
