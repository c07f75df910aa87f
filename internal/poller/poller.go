// Package poller drives the periodic cluster queries. Each Poller owns one
// query kind and delivers immutable outcomes over a channel; it never touches
// UI state.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"slurmvision/internal/slurm"
)

// Fetch executes one poll tick: query, parse, and wrap the result.
type Fetch func(ctx context.Context, seq uint64) slurm.Outcome

// Poller runs Fetch on a fixed interval measured start-to-start. At most one
// tick is in flight at a time: if the timer fires while a tick is still
// running, that firing is skipped, not queued, so slow queries never stack
// subprocesses. Outcomes (including failures) are always delivered in tick
// start order.
type Poller struct {
	interval time.Duration
	fetch    Fetch
	out      chan<- slurm.Outcome
	log      *slog.Logger

	kick     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	inFlight atomic.Bool
	seq      atomic.Uint64
}

// New builds a Poller delivering outcomes on out. The channel is shared with
// the terminal session; per-kind ordering holds because each Poller is the
// only writer for its kind and runs one tick at a time.
func New(interval time.Duration, fetch Fetch, out chan<- slurm.Outcome, log *slog.Logger) *Poller {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Poller{
		interval: interval,
		fetch:    fetch,
		out:      out,
		log:      log,
		kick:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
}

// Start launches the poll loop, beginning with an immediate tick.
func (p *Poller) Start() {
	p.wg.Add(1)
	go p.loop()
}

// Kick requests an immediate tick (manual refresh). Ignored if one is already
// in flight or pending.
func (p *Poller) Kick() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Stop raises the soft-stop signal: an in-flight tick may finish (success or
// timeout) but no further ticks are scheduled. Safe to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

// Wait blocks until the loop and any in-flight tick have wound down.
func (p *Poller) Wait() {
	p.wg.Wait()
}

func (p *Poller) loop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.spawn()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.spawn()
		case <-p.kick:
			p.spawn()
			// A manual refresh restarts the interval so the next periodic
			// tick keeps its distance from this one.
			ticker.Reset(p.interval)
		}
	}
}

func (p *Poller) spawn() {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.log.Debug("tick skipped, previous still running")
		return
	}
	seq := p.seq.Add(1)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Store(false)

		out := p.fetch(context.Background(), seq)
		select {
		case p.out <- out:
		case <-p.stop:
			// Session is gone; drop the outcome rather than block forever.
		}
	}()
}
