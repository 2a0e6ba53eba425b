package teleop

import (
	"context"
	"log/slog"
	"time"

	"github.com/Versifine/tellojoy/internal/control"
)

// NopSink logs velocity changes instead of flying anything. Used for
// dry runs.
type NopSink struct {
	last control.Velocity
}

func (s *NopSink) SendVelocity(v control.Velocity) error {
	if v != s.last {
		slog.Debug("Velocity", "cmd", v.String())
		s.last = v
	}
	return nil
}

// NopClient answers every action with success after Delay.
type NopClient struct {
	Delay time.Duration
}

func (c NopClient) Call(ctx context.Context, req control.Request) (control.Result, error) {
	slog.Info("Dry-run action", "action", req.Action, "command", req.Command())
	if c.Delay > 0 {
		t := time.NewTimer(c.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return control.Result{}, ctx.Err()
		}
	}
	return control.Result{Success: true, Message: "ok"}, nil
}
