package event

import "time"

const (
	EventAll              = "*"
	EventActionIssued     = "action.issued"
	EventActionDropped    = "action.dropped"
	EventActionExpired    = "action.expired"
	EventActionResolved   = "action.resolved"
	EventSnapshotRejected = "snapshot.rejected"
)

type ActionIssuedEvent struct {
	Action  string
	Command string
	RunID   uint64
}

type ActionDroppedEvent struct {
	Action  string
	RunID   uint64 // the run still outstanding
	Pending time.Duration
}

// ActionExpiredEvent reports a slot that was force-cleared because its
// result never arrived.
type ActionExpiredEvent struct {
	Action  string
	RunID   uint64
	Pending time.Duration
}

type ActionResolvedEvent struct {
	Action     string
	RunID      uint64
	Success    bool
	Message    string
	Err        error
	Elapsed    time.Duration
	Superseded bool
}

type SnapshotRejectedEvent struct {
	Err error
}
