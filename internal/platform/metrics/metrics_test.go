package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 0)

	snap := c.Snapshot()
	if snap["requestsTotal"].(uint64) != 3 {
		t.Fatalf("expected 3 requests, got %v", snap["requestsTotal"])
	}
	if snap["errorsTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 error, got %v", snap["errorsTotal"])
	}
	if snap["rateLimitedTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 rate limited, got %v", snap["rateLimitedTotal"])
	}
	if avg := snap["avgDurationMs"].(float64); avg <= 13 || avg >= 14 {
		t.Fatalf("unexpected average %v", avg)
	}
}

func TestCollectorCountConcurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Count("request.created.leave")
		}()
	}
	wg.Wait()

	events := c.Snapshot()["events"].(map[string]uint64)
	if events["request.created.leave"] != 50 {
		t.Fatalf("expected 50 events, got %d", events["request.created.leave"])
	}
}
