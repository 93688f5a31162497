package analyzer

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestTrackerPasses(t *testing.T) {
	var snaps []Progress
	tracker := NewTracker(func(p Progress) {
		snaps = append(snaps, p)
	})

	tracker.BeginPass("class-scan", 2)
	tracker.FileDone("A.cs", nil)
	tracker.FileDone("B.cs", errors.New("bad nesting"))
	tracker.BeginPass("relationship", 1)
	tracker.FileDone("A.cs", nil)

	want := []Progress{
		{Pass: "class-scan", File: "A.cs", Done: 1, Total: 2},
		{Pass: "class-scan", File: "B.cs", Done: 2, Failed: 1, Total: 2},
		{Pass: "relationship", File: "A.cs", Done: 3, Failed: 1, Total: 3},
	}
	if len(snaps) != len(want) {
		t.Fatalf("got %d callbacks, want %d", len(snaps), len(want))
	}
	for i := range want {
		if snaps[i] != want[i] {
			t.Errorf("callback %d = %+v, want %+v", i, snaps[i], want[i])
		}
	}
}

func TestTrackerNilCallback(t *testing.T) {
	tracker := NewTracker(nil)
	tracker.BeginPass("functions", 1)
	tracker.FileDone("A.cs", nil)

	if got := tracker.Snapshot(); got.Done != 1 || got.Total != 1 {
		t.Errorf("Snapshot() = %+v", got)
	}
}

func TestTrackerConcurrent(t *testing.T) {
	calls := 0
	tracker := NewTracker(func(Progress) { calls++ })
	tracker.BeginPass("functions", 100)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.FileDone("f.cs", nil)
		}()
	}
	wg.Wait()

	if got := tracker.Snapshot().Done; got != 100 {
		t.Errorf("Done = %d, want 100", got)
	}
	if calls != 100 {
		t.Errorf("callback calls = %d, want 100", calls)
	}
}

func TestTrackerContext(t *testing.T) {
	ctx := context.Background()
	if TrackerFromContext(ctx) != nil {
		t.Error("TrackerFromContext() should return nil without a tracker")
	}

	tracker := NewTracker(nil)
	if got := TrackerFromContext(WithTracker(ctx, tracker)); got != tracker {
		t.Error("TrackerFromContext() should return the attached tracker")
	}
}
