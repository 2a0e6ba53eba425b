// Package teleop turns input snapshots into velocity commands and
// discrete action requests.
package teleop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Versifine/tellojoy/internal/control"
	"github.com/Versifine/tellojoy/internal/event"
)

// VelocitySink applies a velocity command. No acknowledgement is expected.
type VelocitySink interface {
	SendVelocity(v control.Velocity) error
}

// Dispatcher issues a request without waiting for its result.
type Dispatcher interface {
	Trigger(req control.Request) bool
}

// Source pushes snapshots into emit one at a time until ctx ends or the
// device goes away.
type Source interface {
	Run(ctx context.Context, emit func(control.Snapshot)) error
}

type Node struct {
	mu         sync.Mutex
	mapper     *control.Mapper
	sink       VelocitySink
	dispatcher Dispatcher
	bus        *event.Bus
	nudgeCM    int

	handled  uint64
	rejected uint64
}

type Option func(*Node)

func WithBus(bus *event.Bus) Option {
	return func(n *Node) { n.bus = bus }
}

func WithNudge(cm int) Option {
	return func(n *Node) { n.nudgeCM = cm }
}

func New(b control.Bindings, sink VelocitySink, dispatcher Dispatcher, opts ...Option) (*Node, error) {
	if sink == nil {
		return nil, errors.New("teleop: velocity sink is nil")
	}
	if dispatcher == nil {
		return nil, errors.New("teleop: dispatcher is nil")
	}
	mapper, err := control.NewMapper(b)
	if err != nil {
		return nil, fmt.Errorf("teleop: %w", err)
	}
	n := &Node{
		mapper:     mapper,
		sink:       sink,
		dispatcher: dispatcher,
		nudgeCM:    control.DefaultNudgeCM,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Handle processes one snapshot. Calls are serialized; the velocity command
// is sent before any action is triggered. A snapshot that does not fit the
// bindings is rejected as a whole.
func (n *Node) Handle(snap control.Snapshot) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	vel, actions, err := n.mapper.Next(snap)
	if err != nil {
		n.rejected++
		n.bus.Publish(event.EventSnapshotRejected, &event.SnapshotRejectedEvent{Err: err})
		return err
	}
	n.handled++

	if err := n.sink.SendVelocity(vel); err != nil {
		slog.Warn("Failed to send velocity", "velocity", vel.String(), "error", err)
	}

	for _, a := range actions {
		n.dispatcher.Trigger(control.RequestFor(a, n.nudgeCM))
	}
	return nil
}

// Run feeds every snapshot from src through Handle. Rejected snapshots are
// skipped and reported on the bus; Run returns when src stops.
func (n *Node) Run(ctx context.Context, src Source) error {
	slog.Info("Teleop started")
	err := src.Run(ctx, func(snap control.Snapshot) {
		_ = n.Handle(snap)
	})
	handled, rejected := n.Stats()
	slog.Info("Teleop stopped", "handled", handled, "rejected", rejected)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (n *Node) Stats() (handled, rejected uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.handled, n.rejected
}
