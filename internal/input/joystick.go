package input

import (
	"errors"
	"fmt"

	"github.com/Versifine/tellojoy/internal/control"
)

var ErrNoDevice = errors.New("joystick device path is empty")

// AxisSpec maps one kernel absolute-axis code to a snapshot axis and gives
// the raw range that is normalized to [-1, 1].
type AxisSpec struct {
	Code   uint16
	Min    int32
	Max    int32
	Invert bool
}

// Layout orders kernel codes into snapshot indices: Axes[i] becomes axis-id
// i and Buttons[i] becomes button-id i.
type Layout struct {
	Axes    []AxisSpec
	Buttons []uint16
}

func (l Layout) Validate() error {
	if len(l.Axes) == 0 && len(l.Buttons) == 0 {
		return errors.New("joystick layout has no axes or buttons")
	}
	for i, a := range l.Axes {
		if a.Max <= a.Min {
			return fmt.Errorf("joystick axis %d (code %d): max %d must exceed min %d", i, a.Code, a.Max, a.Min)
		}
	}
	return nil
}

// padState accumulates kernel events between sync reports.
type padState struct {
	layout  Layout
	axisIdx map[uint16]int
	btnIdx  map[uint16]int
	axes    []float64
	buttons []bool
}

func newPadState(l Layout) *padState {
	s := &padState{
		layout:  l,
		axisIdx: make(map[uint16]int, len(l.Axes)),
		btnIdx:  make(map[uint16]int, len(l.Buttons)),
		axes:    make([]float64, len(l.Axes)),
		buttons: make([]bool, len(l.Buttons)),
	}
	for i, a := range l.Axes {
		s.axisIdx[a.Code] = i
	}
	for i, code := range l.Buttons {
		s.btnIdx[code] = i
	}
	return s
}

// setAxis records a raw absolute value. Unknown codes are ignored.
func (s *padState) setAxis(code uint16, raw int32) {
	i, ok := s.axisIdx[code]
	if !ok {
		return
	}
	s.axes[i] = normalizeAxis(s.layout.Axes[i], raw)
}

func (s *padState) setButton(code uint16, value int32) {
	i, ok := s.btnIdx[code]
	if !ok {
		return
	}
	// 0 release, 1 press, 2 autorepeat
	s.buttons[i] = value != 0
}

func (s *padState) snapshot() control.Snapshot {
	return control.Snapshot{
		Axes:    append([]float64(nil), s.axes...),
		Buttons: append([]bool(nil), s.buttons...),
	}
}

// normalizeAxis maps [Min, Max] linearly onto [-1, 1]. Joystick drivers
// report positive values for right/back, so the result is negated to get
// the left/forward-positive convention; Invert undoes that for axes that
// already follow it. Values outside the range are not clamped.
func normalizeAxis(a AxisSpec, raw int32) float64 {
	span := float64(a.Max) - float64(a.Min)
	v := 2*(float64(raw)-float64(a.Min))/span - 1
	if !a.Invert {
		v = -v
	}
	return v
}

// XBoxEvdevLayout matches the Linux xpad driver with dpad_to_buttons set,
// ordered to fit control.XBoxOne.
func XBoxEvdevLayout() Layout {
	stick := func(code uint16) AxisSpec { return AxisSpec{Code: code, Min: -32768, Max: 32767} }
	trigger := func(code uint16) AxisSpec { return AxisSpec{Code: code, Min: 0, Max: 1023, Invert: true} }
	hat := func(code uint16) AxisSpec { return AxisSpec{Code: code, Min: -1, Max: 1} }
	return Layout{
		Axes: []AxisSpec{
			stick(0x00), // ABS_X
			stick(0x01), // ABS_Y
			trigger(0x02),
			stick(0x03), // ABS_RX
			stick(0x04), // ABS_RY
			trigger(0x05),
			hat(0x10),
			hat(0x11),
		},
		Buttons: []uint16{
			0x130, // BTN_A
			0x131, // BTN_B
			0x134, // BTN_Y
			0x133, // BTN_X
			0x13a, // BTN_SELECT (view)
			0x13b, // BTN_START (menu)
			0x2c0, // dpad left
			0x2c1, // dpad right
			0x13c, // BTN_MODE
			0x13d, // BTN_THUMBL
			0x13e, // BTN_THUMBR
			0x2c2, // dpad up
			0x2c3, // dpad down
			0x136, // BTN_TL
			0x137, // BTN_TR
		},
	}
}
