package control

import (
	"fmt"
	"time"

	"github.com/golang/geo/r3"
)

// Snapshot is one report from an input device. Axis and button ids are
// indices into Axes and Buttons.
type Snapshot struct {
	Axes    []float64
	Buttons []bool
	Stamp   time.Time
}

func (s Snapshot) button(id int) (bool, bool) {
	if id < 0 || id >= len(s.Buttons) {
		return false, false
	}
	return s.Buttons[id], true
}

func (s Snapshot) axis(id int) (float64, bool) {
	if id < 0 || id >= len(s.Axes) {
		return 0, false
	}
	return s.Axes[id], true
}

// Clone returns a copy that does not share backing arrays with s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Stamp: s.Stamp}
	if s.Axes != nil {
		out.Axes = append([]float64(nil), s.Axes...)
	}
	if s.Buttons != nil {
		out.Buttons = append([]bool(nil), s.Buttons...)
	}
	return out
}

// Velocity is a body-frame velocity command. Only Angular.Z is used for
// rotation; Angular.X and Angular.Y stay zero.
type Velocity struct {
	Linear  r3.Vector
	Angular r3.Vector
}

func (v Velocity) IsZero() bool {
	return v.Linear == (r3.Vector{}) && v.Angular == (r3.Vector{})
}

func (v Velocity) String() string {
	return fmt.Sprintf("lin=(%.3f %.3f %.3f) yaw=%.3f", v.Linear.X, v.Linear.Y, v.Linear.Z, v.Angular.Z)
}

type Channel string

const (
	ChannelThrottle Channel = "throttle"
	ChannelStrafe   Channel = "strafe"
	ChannelVertical Channel = "vertical"
	ChannelYaw      Channel = "yaw"
)

// Channels lists every velocity channel in output order.
var Channels = []Channel{ChannelThrottle, ChannelStrafe, ChannelVertical, ChannelYaw}

func ParseChannel(s string) (Channel, error) {
	for _, c := range Channels {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChannel, s)
}

type Action string

const (
	ActionTakeoff      Action = "takeoff"
	ActionLand         Action = "land"
	ActionFlipX        Action = "flip-x"
	ActionFlipCircle   Action = "flip-circle"
	ActionFlipSquare   Action = "flip-square"
	ActionFlipTriangle Action = "flip-triangle"
	ActionNudgeUp      Action = "nudge-up"
	ActionNudgeDown    Action = "nudge-down"
	ActionNudgeLeft    Action = "nudge-left"
	ActionNudgeRight   Action = "nudge-right"
)

// Actions lists every discrete action. Triggered actions are reported in
// this order.
var Actions = []Action{
	ActionTakeoff,
	ActionLand,
	ActionFlipX,
	ActionFlipCircle,
	ActionFlipSquare,
	ActionFlipTriangle,
	ActionNudgeUp,
	ActionNudgeDown,
	ActionNudgeLeft,
	ActionNudgeRight,
}

func ParseAction(s string) (Action, error) {
	for _, a := range Actions {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// Request is the remote call issued for a triggered action.
type Request struct {
	Action Action
	Name   string
	Arg    string
}

// Command renders the request as a single text command, e.g. "flip l".
func (r Request) Command() string {
	if r.Arg == "" {
		return r.Name
	}
	return r.Name + " " + r.Arg
}

// Result is what the action service eventually answers.
type Result struct {
	Success bool
	Message string
}
