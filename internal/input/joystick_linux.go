//go:build linux

package input

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/Versifine/tellojoy/internal/control"
)

// Joystick reads a Linux event device and emits one snapshot per
// SYN_REPORT.
type Joystick struct {
	path   string
	layout Layout
}

func NewJoystick(path string, layout Layout) (*Joystick, error) {
	if path == "" {
		return nil, ErrNoDevice
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &Joystick{path: path, layout: layout}, nil
}

func (j *Joystick) Run(ctx context.Context, emit func(control.Snapshot)) error {
	dev, err := evdev.Open(j.path)
	if err != nil {
		return fmt.Errorf("open joystick %s: %w", j.path, err)
	}
	slog.Info("Joystick opened", "device", j.path, "name", dev.Name)

	go func() {
		<-ctx.Done()
		_ = dev.File.Close()
	}()

	state := newPadState(j.layout)
	for {
		events, err := dev.Read()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, os.ErrClosed) {
				return ctx.Err()
			}
			return fmt.Errorf("read joystick %s: %w", j.path, err)
		}
		for _, ev := range events {
			switch ev.Type {
			case evdev.EV_ABS:
				state.setAxis(ev.Code, ev.Value)
			case evdev.EV_KEY:
				state.setButton(ev.Code, ev.Value)
			case evdev.EV_SYN:
				snap := state.snapshot()
				sec, nsec := ev.Time.Unix()
				snap.Stamp = time.Unix(sec, nsec)
				emit(snap)
			}
		}
	}
}
