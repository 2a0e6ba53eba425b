package event

import (
	"fmt"
	"log/slog"
)

// LogHandler writes teleop events to the default logger. Subscribe it to
// EventAll to surface action results outside the control path.
func LogHandler(raw any) {
	switch evt := raw.(type) {
	case *ActionIssuedEvent:
		slog.Debug("Action issued", "action", evt.Action, "command", evt.Command, "run", evt.RunID)
	case *ActionDroppedEvent:
		slog.Debug("Action dropped, request outstanding", "action", evt.Action, "run", evt.RunID, "pending", evt.Pending)
	case *ActionExpiredEvent:
		slog.Warn("Action result never arrived, slot cleared", "action", evt.Action, "run", evt.RunID, "pending", evt.Pending)
	case *ActionResolvedEvent:
		switch {
		case evt.Err != nil:
			slog.Warn("Action failed", "action", evt.Action, "run", evt.RunID, "elapsed", evt.Elapsed, "error", evt.Err, "superseded", evt.Superseded)
		case !evt.Success:
			slog.Warn("Action rejected", "action", evt.Action, "run", evt.RunID, "elapsed", evt.Elapsed, "message", evt.Message, "superseded", evt.Superseded)
		default:
			slog.Info("Action done", "action", evt.Action, "run", evt.RunID, "elapsed", evt.Elapsed, "superseded", evt.Superseded)
		}
	case *SnapshotRejectedEvent:
		slog.Error("Input snapshot rejected", "error", evt.Err)
	default:
		slog.Error("Invalid event type for LogHandler", "type", fmt.Sprintf("%T", raw))
	}
}
