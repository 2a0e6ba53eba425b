package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Versifine/tellojoy/internal/control"
)

type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Input    InputConfig    `yaml:"input"`
	Drone    DroneConfig    `yaml:"drone"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Bindings BindingsConfig `yaml:"bindings"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"TELLOJOY_LOG_LEVEL"`
	Format string `yaml:"format" env:"TELLOJOY_LOG_FORMAT"`
	File   string `yaml:"file" env:"TELLOJOY_LOG_FILE"`
}

const (
	SourceKeyboard = "keyboard"
	SourceEvdev    = "evdev"
)

type InputConfig struct {
	Source string `yaml:"source" env:"TELLOJOY_INPUT_SOURCE"`
	// Tick is how often the keyboard source reports its virtual stick.
	Tick  time.Duration `yaml:"tick" env:"TELLOJOY_INPUT_TICK"`
	Pulse time.Duration `yaml:"pulse" env:"TELLOJOY_INPUT_PULSE"`
	Evdev EvdevConfig   `yaml:"evdev"`
}

// EvdevConfig lists the kernel event codes in snapshot order: the n-th
// entry of Axes becomes axis-id n.
type EvdevConfig struct {
	Device  string      `yaml:"device" env:"TELLOJOY_EVDEV_DEVICE"`
	Axes    []EvdevAxis `yaml:"axes"`
	Buttons []uint16    `yaml:"buttons"`
}

type EvdevAxis struct {
	Code uint16 `yaml:"code"`
	Min  int32  `yaml:"min"`
	Max  int32  `yaml:"max"`
	// Invert is for sticks that report forward/left as the minimum.
	Invert bool `yaml:"invert"`
}

type DroneConfig struct {
	Addr      string `yaml:"addr" env:"TELLOJOY_DRONE_ADDR"`
	LocalAddr string `yaml:"local_addr" env:"TELLOJOY_DRONE_LOCAL_ADDR"`
	// Speed scales a full stick deflection to this percentage of the rc range.
	Speed          int           `yaml:"speed" env:"TELLOJOY_DRONE_SPEED"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"TELLOJOY_DRONE_CONNECT_TIMEOUT"`
	DryRun         bool          `yaml:"dry_run" env:"TELLOJOY_DRY_RUN"`
}

type DispatchConfig struct {
	CallTimeout time.Duration `yaml:"call_timeout" env:"TELLOJOY_CALL_TIMEOUT"`
	StaleAfter  time.Duration `yaml:"stale_after" env:"TELLOJOY_STALE_AFTER"`
	NudgeCM     int           `yaml:"nudge_cm" env:"TELLOJOY_NUDGE_CM"`
}

// BindingsConfig starts from a preset layout and overrides single entries.
// Axes is keyed by channel name, Buttons by action name.
type BindingsConfig struct {
	Layout  string                  `yaml:"layout"`
	Axes    map[string]AxisOverride `yaml:"axes"`
	Buttons map[string]int          `yaml:"buttons"`
}

type AxisOverride struct {
	Axis   int  `yaml:"axis"`
	Invert bool `yaml:"invert"`
}

const LayoutXBoxOne = "xbox-one"

var ErrUnknownLayout = errors.New("unknown controller layout")

// Load reads the YAML file at path, applies TELLOJOY_* environment
// overrides and fills defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Input.Source == "" {
		c.Input.Source = SourceKeyboard
	}
	if c.Input.Tick <= 0 {
		c.Input.Tick = 50 * time.Millisecond
	}
	if c.Input.Pulse <= 0 {
		c.Input.Pulse = 180 * time.Millisecond
	}
	if c.Drone.Addr == "" {
		c.Drone.Addr = "192.168.10.1:8889"
	}
	if c.Drone.Speed <= 0 {
		c.Drone.Speed = 100
	}
	if c.Drone.ConnectTimeout <= 0 {
		c.Drone.ConnectTimeout = 5 * time.Second
	}
	if c.Dispatch.CallTimeout <= 0 {
		c.Dispatch.CallTimeout = 20 * time.Second
	}
	if c.Dispatch.NudgeCM <= 0 {
		c.Dispatch.NudgeCM = control.DefaultNudgeCM
	}
	if c.Bindings.Layout == "" {
		c.Bindings.Layout = LayoutXBoxOne
	}
}

// Build resolves the layout and overrides into validated bindings.
func (b BindingsConfig) Build() (control.Bindings, error) {
	var out control.Bindings
	switch b.Layout {
	case "", LayoutXBoxOne:
		out = control.XBoxOne()
	default:
		return control.Bindings{}, fmt.Errorf("%w: %q", ErrUnknownLayout, b.Layout)
	}

	for name, ov := range b.Axes {
		ch, err := control.ParseChannel(name)
		if err != nil {
			return control.Bindings{}, err
		}
		out.Axes[ch] = control.AxisBinding{Axis: ov.Axis, Invert: ov.Invert}
	}
	for name, id := range b.Buttons {
		a, err := control.ParseAction(name)
		if err != nil {
			return control.Bindings{}, err
		}
		// A negative id unbinds the action.
		if id < 0 {
			delete(out.Buttons, a)
			continue
		}
		out.Buttons[a] = id
	}

	if err := out.Validate(); err != nil {
		return control.Bindings{}, fmt.Errorf("bindings: %w", err)
	}
	return out, nil
}
