package control

import (
	"errors"
	"testing"
)

func TestXBoxOneIsValid(t *testing.T) {
	if err := XBoxOne().Validate(); err != nil {
		t.Fatalf("XBoxOne().Validate() = %v", err)
	}
}

func TestBindingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b *Bindings)
		wantErr error
	}{
		{
			name:    "missing channel",
			mutate:  func(b *Bindings) { delete(b.Axes, ChannelYaw) },
			wantErr: ErrMissingChannel,
		},
		{
			name:    "negative axis",
			mutate:  func(b *Bindings) { b.Axes[ChannelStrafe] = AxisBinding{Axis: -1} },
			wantErr: ErrNegativeID,
		},
		{
			name:    "negative button",
			mutate:  func(b *Bindings) { b.Buttons[ActionLand] = -3 },
			wantErr: ErrNegativeID,
		},
		{
			name:    "duplicate button",
			mutate:  func(b *Bindings) { b.Buttons[ActionFlipX] = XBoxButtonMenu },
			wantErr: ErrDuplicateButton,
		},
		{
			name:    "unknown action",
			mutate:  func(b *Bindings) { b.Buttons[Action("barrel-roll")] = 14 },
			wantErr: ErrUnknownAction,
		},
		{
			name:    "unknown channel",
			mutate:  func(b *Bindings) { b.Axes[Channel("pitch")] = AxisBinding{Axis: 2} },
			wantErr: ErrUnknownChannel,
		},
		{
			name:   "unbound action is fine",
			mutate: func(b *Bindings) { delete(b.Buttons, ActionFlipTriangle) },
		},
		{
			name:   "shared axis is fine",
			mutate: func(b *Bindings) { b.Axes[ChannelYaw] = AxisBinding{Axis: XBoxAxisRightLR, Invert: true} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := XBoxOne()
			tt.mutate(&b)
			err := b.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewMapperRejectsInvalidBindings(t *testing.T) {
	b := XBoxOne()
	b.Buttons[ActionNudgeUp] = XBoxButtonDown
	if _, err := NewMapper(b); !errors.Is(err, ErrDuplicateButton) {
		t.Fatalf("NewMapper() error = %v, want ErrDuplicateButton", err)
	}
}

func TestNewMapperCopiesBindings(t *testing.T) {
	b := XBoxOne()
	m, err := NewMapper(b)
	if err != nil {
		t.Fatalf("NewMapper() error = %v", err)
	}
	b.Buttons[ActionTakeoff] = 14

	if got := m.Bindings().Buttons[ActionTakeoff]; got != XBoxButtonMenu {
		t.Fatalf("mapper takeoff button = %d, want %d", got, XBoxButtonMenu)
	}
}

func TestParseNames(t *testing.T) {
	for _, c := range Channels {
		got, err := ParseChannel(string(c))
		if err != nil || got != c {
			t.Errorf("ParseChannel(%q) = %q, %v", c, got, err)
		}
	}
	for _, a := range Actions {
		got, err := ParseAction(string(a))
		if err != nil || got != a {
			t.Errorf("ParseAction(%q) = %q, %v", a, got, err)
		}
	}
	if _, err := ParseAction("hover"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("ParseAction(hover) error = %v", err)
	}
}

func TestRequestFor(t *testing.T) {
	tests := []struct {
		action Action
		nudge  int
		want   string
	}{
		{ActionTakeoff, 0, "takeoff"},
		{ActionLand, 0, "land"},
		{ActionFlipX, 0, "flip f"},
		{ActionFlipCircle, 0, "flip r"},
		{ActionFlipSquare, 0, "flip l"},
		{ActionFlipTriangle, 0, "flip b"},
		{ActionNudgeUp, 0, "up 30"},
		{ActionNudgeDown, 50, "down 50"},
		{ActionNudgeLeft, 20, "left 20"},
		{ActionNudgeRight, -1, "right 30"},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			req := RequestFor(tt.action, tt.nudge)
			if req.Action != tt.action {
				t.Errorf("Action = %q, want %q", req.Action, tt.action)
			}
			if got := req.Command(); got != tt.want {
				t.Errorf("Command() = %q, want %q", got, tt.want)
			}
		})
	}
}
