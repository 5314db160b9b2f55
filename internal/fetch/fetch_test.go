package fetch

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunSettlesWithData(t *testing.T) {
	f := New(func(_ context.Context, arg string) ([]string, error) {
		return []string{arg}, nil
	})

	if s := f.Snapshot(); s.Loading || s.Data != nil || s.Err != nil {
		t.Fatalf("fresh fetcher state = %+v, want zero", s)
	}

	settled := <-f.Run(context.Background(), "engineer")
	if settled.Err != nil {
		t.Fatalf("settled with error: %v", settled.Err)
	}
	if len(settled.Data) != 1 || settled.Data[0] != "engineer" {
		t.Fatalf("settled data = %v", settled.Data)
	}

	s := f.Snapshot()
	if s.Loading {
		t.Error("still loading after settlement")
	}
	if len(s.Data) != 1 || s.Data[0] != "engineer" {
		t.Errorf("snapshot data = %v", s.Data)
	}
}

func TestRunSettlesWithErrorAndZeroData(t *testing.T) {
	boom := errors.New("boom")
	f := New(func(_ context.Context, _ string) ([]string, error) {
		return []string{"partial"}, boom
	})

	settled := <-f.Run(context.Background(), "x")
	if !errors.Is(settled.Err, boom) {
		t.Fatalf("err = %v, want boom", settled.Err)
	}
	if settled.Data != nil {
		t.Errorf("data = %v, want zero value alongside the error", settled.Data)
	}

	s := f.Snapshot()
	if !errors.Is(s.Err, boom) || s.Data != nil {
		t.Errorf("snapshot = %+v, want error state with zero data", s)
	}
}

func TestErrorRunClearsPreviousData(t *testing.T) {
	var fail bool
	f := New(func(_ context.Context, arg string) (string, error) {
		if fail {
			return "", errors.New("down")
		}
		return arg, nil
	})

	<-f.Run(context.Background(), "first")
	fail = true
	<-f.Run(context.Background(), "second")

	s := f.Snapshot()
	if s.Err == nil {
		t.Fatal("expected error state")
	}
	if s.Data != "" {
		t.Errorf("stale data %q survived a failed run", s.Data)
	}
}

// TestLastInitiatedRunWins forces the first run to settle after the second:
// the stale settlement must not overwrite the fresher one.
func TestLastInitiatedRunWins(t *testing.T) {
	gate := make(chan struct{})
	f := New(func(_ context.Context, arg string) (string, error) {
		if arg == "slow" {
			<-gate
		}
		return arg, nil
	})

	slowDone := f.Run(context.Background(), "slow")
	fastDone := f.Run(context.Background(), "fast")

	fast := <-fastDone
	if fast.Data != "fast" {
		t.Fatalf("fast run settled with %q", fast.Data)
	}

	close(gate)
	slow := <-slowDone
	if slow.Data != "slow" {
		t.Fatalf("slow run settled with %q", slow.Data)
	}

	s := f.Snapshot()
	if s.Loading {
		t.Error("loading after both runs settled")
	}
	if s.Data != "fast" {
		t.Errorf("snapshot data = %q, the stale run overwrote the fresher one", s.Data)
	}
}

func TestLoadingHoldsWhileNewerRunInFlight(t *testing.T) {
	gate := make(chan struct{})
	f := New(func(_ context.Context, arg string) (string, error) {
		if arg == "slow" {
			<-gate
		}
		return arg, nil
	})

	fastDone := f.Run(context.Background(), "fast")
	<-fastDone
	slowDone := f.Run(context.Background(), "slow")

	// fast 已应用，但更新的 slow 还在途中，必须保持 Loading
	deadline := time.After(time.Second)
	for f.Snapshot().Data != "fast" {
		select {
		case <-deadline:
			t.Fatal("fast settlement never applied")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	if !f.Snapshot().Loading {
		t.Error("not loading while a newer run is in flight")
	}

	close(gate)
	<-slowDone
	s := f.Snapshot()
	if s.Loading || s.Data != "slow" {
		t.Errorf("final snapshot = %+v, want settled slow", s)
	}
}
