//go:build !linux

package input

import (
	"context"
	"errors"

	"github.com/Versifine/tellojoy/internal/control"
)

var errJoystickUnsupported = errors.New("evdev joystick input requires linux")

type Joystick struct{}

func NewJoystick(path string, layout Layout) (*Joystick, error) {
	return nil, errJoystickUnsupported
}

func (j *Joystick) Run(ctx context.Context, emit func(control.Snapshot)) error {
	return errJoystickUnsupported
}
