package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"slurmvision/internal/slurm"
)

func drain(ch chan slurm.Outcome, d time.Duration) []slurm.Outcome {
	var got []slurm.Outcome
	deadline := time.After(d)
	for {
		select {
		case out := <-ch:
			got = append(got, out)
		case <-deadline:
			return got
		}
	}
}

func TestPollerDeliversImmediateTick(t *testing.T) {
	out := make(chan slurm.Outcome, 4)
	fetch := func(ctx context.Context, seq uint64) slurm.Outcome {
		return slurm.Outcome{Query: slurm.KindJobs, Set: slurm.RecordSet{Seq: seq}}
	}

	p := New(time.Hour, fetch, out, nil)
	p.Start()
	defer func() { p.Stop(); p.Wait() }()

	select {
	case got := <-out:
		if got.Set.Seq != 1 {
			t.Errorf("expected seq 1 on first tick, got %d", got.Set.Seq)
		}
	case <-time.After(time.Second):
		t.Fatal("no immediate tick delivered")
	}
}

func TestPollerSkipsOverlappingTicks(t *testing.T) {
	out := make(chan slurm.Outcome, 16)
	var concurrent, maxConcurrent atomic.Int32

	fetch := func(ctx context.Context, seq uint64) slurm.Outcome {
		cur := concurrent.Add(1)
		for {
			m := maxConcurrent.Load()
			if cur <= m || maxConcurrent.CompareAndSwap(m, cur) {
				break
			}
		}
		time.Sleep(120 * time.Millisecond) // slower than the interval
		concurrent.Add(-1)
		return slurm.Outcome{Query: slurm.KindJobs, Set: slurm.RecordSet{Seq: seq}}
	}

	p := New(20*time.Millisecond, fetch, out, nil)
	p.Start()
	time.Sleep(400 * time.Millisecond)
	p.Stop()
	p.Wait()

	if maxConcurrent.Load() > 1 {
		t.Errorf("expected at most 1 tick in flight, saw %d", maxConcurrent.Load())
	}

	got := drain(out, 50*time.Millisecond)
	// 400ms of 120ms ticks: firings during a tick are skipped, never queued.
	if len(got) > 5 {
		t.Errorf("expected skipped firings, got %d deliveries", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Set.Seq <= got[i-1].Set.Seq {
			t.Errorf("out-of-order delivery: seq %d after %d", got[i].Set.Seq, got[i-1].Set.Seq)
		}
	}
}

func TestPollerKickTriggersTick(t *testing.T) {
	out := make(chan slurm.Outcome, 8)
	fetch := func(ctx context.Context, seq uint64) slurm.Outcome {
		return slurm.Outcome{Query: slurm.KindJobs, Set: slurm.RecordSet{Seq: seq}}
	}

	p := New(time.Hour, fetch, out, nil)
	p.Start()
	defer func() { p.Stop(); p.Wait() }()

	<-out // initial tick

	p.Kick()
	select {
	case got := <-out:
		if got.Set.Seq != 2 {
			t.Errorf("expected seq 2 after kick, got %d", got.Set.Seq)
		}
	case <-time.After(time.Second):
		t.Fatal("kick did not trigger a tick")
	}
}

func TestPollerStopWindsDown(t *testing.T) {
	out := make(chan slurm.Outcome) // unbuffered, nobody reading
	started := make(chan struct{}, 1)
	fetch := func(ctx context.Context, seq uint64) slurm.Outcome {
		select {
		case started <- struct{}{}:
		default:
		}
		time.Sleep(50 * time.Millisecond)
		return slurm.Outcome{Query: slurm.KindJobs}
	}

	p := New(time.Hour, fetch, out, nil)
	p.Start()
	<-started

	p.Stop()

	done := make(chan struct{})
	go func() { p.Wait(); close(done) }()
	select {
	case <-done:
		// In-flight tick finished and its delivery was dropped, not blocked.
	case <-time.After(2 * time.Second):
		t.Fatal("Wait hung after Stop with an undelivered outcome")
	}

	// Stop is idempotent.
	p.Stop()
}
