package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Versifine/tellojoy/internal/config"
	"github.com/Versifine/tellojoy/internal/control"
	"github.com/Versifine/tellojoy/internal/dispatch"
	"github.com/Versifine/tellojoy/internal/event"
	"github.com/Versifine/tellojoy/internal/input"
	"github.com/Versifine/tellojoy/internal/logger"
	"github.com/Versifine/tellojoy/internal/teleop"
	"github.com/Versifine/tellojoy/internal/tello"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	src, rawTerminal, err := newSource(cfg.Input)
	if err != nil {
		slog.Error("Failed to set up input", "error", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		File:        cfg.Logging.File,
		RawTerminal: rawTerminal,
	}); err != nil {
		slog.Warn("Logger fell back to stderr", "error", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, src); err != nil {
		slog.Error("Teleop failed", "error", err)
		_ = logger.Close()
		os.Exit(1)
	}
}

func newSource(cfg config.InputConfig) (teleop.Source, bool, error) {
	switch cfg.Source {
	case config.SourceKeyboard:
		kb := input.NewKeyboard(os.Stdin, os.Stderr, cfg.Tick, cfg.Pulse)
		return kb, kb.IsTerminal(), nil
	case config.SourceEvdev:
		js, err := input.NewJoystick(cfg.Evdev.Device, evdevLayout(cfg.Evdev))
		if err != nil {
			return nil, false, err
		}
		return js, false, nil
	default:
		return nil, false, fmt.Errorf("unknown input source %q", cfg.Source)
	}
}

func evdevLayout(cfg config.EvdevConfig) input.Layout {
	if len(cfg.Axes) == 0 && len(cfg.Buttons) == 0 {
		return input.XBoxEvdevLayout()
	}
	l := input.Layout{Buttons: cfg.Buttons}
	for _, a := range cfg.Axes {
		l.Axes = append(l.Axes, input.AxisSpec{Code: a.Code, Min: a.Min, Max: a.Max, Invert: a.Invert})
	}
	return l
}

func run(ctx context.Context, cfg *config.Config, src teleop.Source) error {
	bindings, err := cfg.Bindings.Build()
	if err != nil {
		return fmt.Errorf("build bindings: %w", err)
	}

	bus := event.NewBus()
	bus.Subscribe(event.EventAll, event.LogHandler)
	defer bus.Wait()

	var (
		sink   teleop.VelocitySink
		client dispatch.Client
		drone  *tello.Client
	)
	if cfg.Drone.DryRun {
		slog.Info("Dry run, no drone will be contacted")
		sink = &teleop.NopSink{}
		client = teleop.NopClient{}
	} else {
		drone, err = tello.Dial(ctx, cfg.Drone.Addr, cfg.Drone.LocalAddr, cfg.Drone.Speed)
		if err != nil {
			return err
		}
		defer drone.Close()
		sink, client = drone, drone
	}

	dispatcher := dispatch.New(ctx, client, dispatch.Options{
		CallTimeout: cfg.Dispatch.CallTimeout,
		StaleAfter:  cfg.Dispatch.StaleAfter,
		Bus:         bus,
	})
	defer dispatcher.Close()

	node, err := teleop.New(bindings, sink, dispatcher,
		teleop.WithBus(bus),
		teleop.WithNudge(cfg.Dispatch.NudgeCM),
	)
	if err != nil {
		return err
	}

	return fly(ctx, node, src, sink, drone, cfg.Drone.ConnectTimeout)
}

// fly runs the node until src stops or ctx ends, then sends a zero
// velocity so the drone hovers. drone may be nil for dry runs. The reply
// listener outlives ctx and stops only after the hover is on the wire.
func fly(ctx context.Context, node *teleop.Node, src teleop.Source, sink teleop.VelocitySink, drone *tello.Client, connectTimeout time.Duration) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	listenCtx, stopListen := context.WithCancel(context.Background())
	defer stopListen()

	g, gctx := errgroup.WithContext(runCtx)
	if drone != nil {
		g.Go(func() error { return drone.Listen(listenCtx) })
	}

	g.Go(func() error {
		defer stopListen()
		// Quitting the source ends the whole session.
		defer cancel()
		if drone != nil {
			connCtx, connCancel := context.WithTimeout(gctx, connectTimeout)
			err := drone.Connect(connCtx)
			connCancel()
			if err != nil {
				return err
			}
		}
		err := node.Run(gctx, src)
		if herr := sink.SendVelocity(control.Velocity{}); herr != nil {
			slog.Warn("Failed to send hover on exit", "error", herr)
		} else {
			slog.Info("Hover sent on exit")
		}
		return err
	})

	return g.Wait()
}
