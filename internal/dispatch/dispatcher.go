// Package dispatch issues discrete action requests without blocking the
// input path, keeping at most one request per action in flight.
package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Versifine/tellojoy/internal/control"
	"github.com/Versifine/tellojoy/internal/event"
)

// Client performs one remote action call. It may block until the result
// arrives or ctx ends.
type Client interface {
	Call(ctx context.Context, req control.Request) (control.Result, error)
}

type Options struct {
	// CallTimeout bounds each remote call. Zero means no per-call deadline.
	CallTimeout time.Duration
	// StaleAfter force-clears an outstanding slot on the next trigger once
	// its request has been pending this long. Zero keeps a slot outstanding
	// until its result arrives.
	StaleAfter time.Duration
	Bus        *event.Bus
	Now        func() time.Time
}

type slot struct {
	mu          sync.Mutex
	outstanding bool
	runID       uint64
	since       time.Time
}

type Dispatcher struct {
	client  Client
	opts    Options
	slots   map[control.Action]*slot
	runSeq  atomic.Uint64
	ctx     context.Context
	cancel  context.CancelFunc
	calls   sync.WaitGroup

	// mu orders calls.Add in Trigger against calls.Wait in Close.
	mu     sync.Mutex
	closed bool
}

// New creates a dispatcher whose calls inherit ctx. Every known action gets
// its slot up front, so the slot map is never written after New returns.
func New(ctx context.Context, client Client, opts Options) *Dispatcher {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(ctx)
	d := &Dispatcher{
		client: client,
		opts:   opts,
		slots:  make(map[control.Action]*slot, len(control.Actions)),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, a := range control.Actions {
		d.slots[a] = &slot{}
	}
	return d
}

// Trigger issues req unless a request for the same action is still
// outstanding, in which case the trigger is dropped. It reports whether a
// request was issued and never waits for the remote result.
func (d *Dispatcher) Trigger(req control.Request) bool {
	if d == nil || d.client == nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	s, ok := d.slots[req.Action]
	if !ok {
		slog.Warn("Dropping request for unknown action", "action", req.Action)
		return false
	}

	now := d.opts.Now()
	s.mu.Lock()
	if s.outstanding {
		pending := now.Sub(s.since)
		if d.opts.StaleAfter <= 0 || pending < d.opts.StaleAfter {
			runID := s.runID
			s.mu.Unlock()
			d.opts.Bus.Publish(event.EventActionDropped, &event.ActionDroppedEvent{
				Action:  string(req.Action),
				RunID:   runID,
				Pending: pending,
			})
			return false
		}
		d.opts.Bus.Publish(event.EventActionExpired, &event.ActionExpiredEvent{
			Action:  string(req.Action),
			RunID:   s.runID,
			Pending: pending,
		})
	}
	runID := d.runSeq.Add(1)
	s.outstanding = true
	s.runID = runID
	s.since = now
	d.calls.Add(1)
	s.mu.Unlock()

	d.opts.Bus.Publish(event.EventActionIssued, &event.ActionIssuedEvent{
		Action:  string(req.Action),
		Command: req.Command(),
		RunID:   runID,
	})
	go d.run(s, runID, req, now)
	return true
}

func (d *Dispatcher) run(s *slot, runID uint64, req control.Request, issued time.Time) {
	defer d.calls.Done()

	ctx := d.ctx
	if d.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.CallTimeout)
		defer cancel()
	}

	var (
		res control.Result
		err error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Action call panicked", "action", req.Action, "panic", r)
				res = control.Result{Message: "panic"}
			}
		}()
		res, err = d.client.Call(ctx, req)
	}()

	superseded := !d.resolve(s, runID)
	d.opts.Bus.Publish(event.EventActionResolved, &event.ActionResolvedEvent{
		Action:     string(req.Action),
		RunID:      runID,
		Success:    res.Success && err == nil,
		Message:    res.Message,
		Err:        err,
		Elapsed:    d.opts.Now().Sub(issued),
		Superseded: superseded,
	})
}

// resolve clears the slot if runID is still the request it tracks.
func (d *Dispatcher) resolve(s *slot, runID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.outstanding || s.runID != runID {
		return false
	}
	s.outstanding = false
	return true
}

// Outstanding reports whether a request for a is in flight.
func (d *Dispatcher) Outstanding(a control.Action) bool {
	s, ok := d.slots[a]
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outstanding
}

// Wait blocks until every issued call has returned.
func (d *Dispatcher) Wait() {
	d.calls.Wait()
}

// Close stops accepting triggers, cancels in-flight calls and waits for
// them to return.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.cancel()
	d.calls.Wait()
}
