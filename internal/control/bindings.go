package control

import (
	"fmt"
	"sort"
)

// AxisBinding ties a velocity channel to one device axis. Invert flips the
// sign of the axis value.
type AxisBinding struct {
	Axis   int
	Invert bool
}

func (b AxisBinding) sign() float64 {
	if b.Invert {
		return -1
	}
	return 1
}

// Bindings is the static controller layout. Build it once, validate it,
// and do not mutate it after handing it to a Mapper.
type Bindings struct {
	Axes    map[Channel]AxisBinding
	Buttons map[Action]int
}

// XBox One controller indices as reported by a Linux joystick driver.
const (
	XBoxAxisLeftLR  = 0 // 1.0 is left
	XBoxAxisLeftFB  = 1 // 1.0 is forward
	XBoxAxisRightLR = 3 // 1.0 is left
	XBoxAxisRightFB = 4 // 1.0 is forward

	XBoxButtonX        = 0
	XBoxButtonCircle   = 1
	XBoxButtonTriangle = 2
	XBoxButtonSquare   = 3
	XBoxButtonView     = 4
	XBoxButtonMenu     = 5
	XBoxButtonLeft     = 6
	XBoxButtonRight    = 7
	XBoxButtonUp       = 11
	XBoxButtonDown     = 12

	XBoxAxisCount   = 8
	XBoxButtonCount = 15
)

// XBoxOne returns the default layout: right stick flies the horizontal
// plane, left stick handles altitude and yaw.
func XBoxOne() Bindings {
	return Bindings{
		Axes: map[Channel]AxisBinding{
			ChannelThrottle: {Axis: XBoxAxisRightFB},
			ChannelStrafe:   {Axis: XBoxAxisRightLR},
			ChannelVertical: {Axis: XBoxAxisLeftFB},
			ChannelYaw:      {Axis: XBoxAxisLeftLR},
		},
		Buttons: map[Action]int{
			ActionTakeoff:      XBoxButtonMenu,
			ActionLand:         XBoxButtonView,
			ActionFlipX:        XBoxButtonX,
			ActionFlipCircle:   XBoxButtonCircle,
			ActionFlipSquare:   XBoxButtonSquare,
			ActionFlipTriangle: XBoxButtonTriangle,
			ActionNudgeUp:      XBoxButtonUp,
			ActionNudgeDown:    XBoxButtonDown,
			ActionNudgeLeft:    XBoxButtonLeft,
			ActionNudgeRight:   XBoxButtonRight,
		},
	}
}

// Clone returns a deep copy so callers can derive a layout from a preset.
func (b Bindings) Clone() Bindings {
	out := Bindings{
		Axes:    make(map[Channel]AxisBinding, len(b.Axes)),
		Buttons: make(map[Action]int, len(b.Buttons)),
	}
	for k, v := range b.Axes {
		out.Axes[k] = v
	}
	for k, v := range b.Buttons {
		out.Buttons[k] = v
	}
	return out
}

// Validate checks that every channel is bound, that ids are non-negative and
// that no two actions share a button. Actions may be left unbound.
func (b Bindings) Validate() error {
	for _, c := range Channels {
		ab, ok := b.Axes[c]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingChannel, c)
		}
		if ab.Axis < 0 {
			return fmt.Errorf("%w: %s axis %d", ErrNegativeID, c, ab.Axis)
		}
	}
	for c := range b.Axes {
		if _, err := ParseChannel(string(c)); err != nil {
			return err
		}
	}

	owners := make(map[int]Action, len(b.Buttons))
	for _, a := range b.sortedActions() {
		if _, err := ParseAction(string(a)); err != nil {
			return err
		}
		id := b.Buttons[a]
		if id < 0 {
			return fmt.Errorf("%w: %s button %d", ErrNegativeID, a, id)
		}
		if prev, dup := owners[id]; dup {
			return fmt.Errorf("%w: button %d used by %s and %s", ErrDuplicateButton, id, prev, a)
		}
		owners[id] = a
	}
	return nil
}

func (b Bindings) sortedActions() []Action {
	out := make([]Action, 0, len(b.Buttons))
	for a := range b.Buttons {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
