// Package input provides snapshot sources for the teleop node.
package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/Versifine/tellojoy/internal/control"
)

const (
	defaultTickInterval = 50 * time.Millisecond
	defaultMovePulse    = 180 * time.Millisecond
)

type axisKey struct {
	axis  int
	value float64
}

// Keys drive the same indices an XBox One pad reports, so the default
// bindings work unchanged.
var axisKeys = map[byte]axisKey{
	'w': {control.XBoxAxisLeftFB, 1},
	's': {control.XBoxAxisLeftFB, -1},
	'a': {control.XBoxAxisLeftLR, 1},
	'd': {control.XBoxAxisLeftLR, -1},
	'i': {control.XBoxAxisRightFB, 1},
	'k': {control.XBoxAxisRightFB, -1},
	'j': {control.XBoxAxisRightLR, 1},
	'l': {control.XBoxAxisRightLR, -1},
}

var buttonKeys = map[byte]int{
	't': control.XBoxButtonMenu,
	'g': control.XBoxButtonView,
	'1': control.XBoxButtonX,
	'2': control.XBoxButtonCircle,
	'3': control.XBoxButtonTriangle,
	'4': control.XBoxButtonSquare,
}

var arrowKeys = map[byte]int{
	'A': control.XBoxButtonUp,
	'B': control.XBoxButtonDown,
	'C': control.XBoxButtonRight,
	'D': control.XBoxButtonLeft,
}

// Keyboard is a virtual gamepad on a terminal. Stick keys hold their axis
// for a short pulse, so a held key (auto-repeat) keeps the stick deflected.
// Button keys produce one press followed by a release.
type Keyboard struct {
	in           io.Reader
	out          io.Writer
	outMu        sync.Mutex
	tickInterval time.Duration
	movePulse    time.Duration
	now          func() time.Time

	mu          sync.Mutex
	axes        [control.XBoxAxisCount]float64
	axisUntil   [control.XBoxAxisCount]time.Time
	pending     map[int]bool
	lastButtons [control.XBoxButtonCount]bool
	escState    int
	quit        bool
	statusWidth int
}

func NewKeyboard(in io.Reader, out io.Writer, tick, pulse time.Duration) *Keyboard {
	if tick <= 0 {
		tick = defaultTickInterval
	}
	if pulse <= 0 {
		pulse = defaultMovePulse
	}
	return &Keyboard{
		in:           in,
		out:          out,
		tickInterval: tick,
		movePulse:    pulse,
		now:          time.Now,
		pending:      make(map[int]bool),
	}
}

// IsTerminal reports whether the keyboard reads from an interactive
// terminal, which Run switches to raw mode.
func (k *Keyboard) IsTerminal() bool {
	f, ok := k.in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (k *Keyboard) Run(ctx context.Context, emit func(control.Snapshot)) error {
	if k.IsTerminal() {
		fd := int(k.in.(*os.File).Fd())
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("set terminal raw mode: %w", err)
		}
		defer func() {
			_ = term.Restore(fd, oldState)
			k.print("\r\n")
		}()
	}
	k.printHelp()

	keys := make(chan byte, 64)
	readErr := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(k.in)
		for {
			b, err := reader.ReadByte()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case keys <- b:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(k.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read keyboard input: %w", err)
		case b := <-keys:
			k.handleKey(b)
			if k.quitRequested() {
				return nil
			}
		case <-ticker.C:
			snap := k.snapshot()
			emit(snap)
			k.renderStatusLine(snap)
		}
	}
}

func (k *Keyboard) handleKey(b byte) {
	k.mu.Lock()
	defer k.mu.Unlock()

	switch k.escState {
	case 1:
		if b == '[' {
			k.escState = 2
			return
		}
		k.escState = 0
	case 2:
		k.escState = 0
		if id, ok := arrowKeys[b]; ok {
			k.pending[id] = true
		}
		return
	}

	switch b {
	case 27: // ESC, maybe an arrow sequence
		k.escState = 1
		return
	case 3, 'q', 'Q': // Ctrl-C
		k.quit = true
		return
	case ' ', 'x', 'X':
		for i := range k.axisUntil {
			k.axisUntil[i] = time.Time{}
		}
		return
	case '?', 'h', 'H':
		k.printHelp()
		return
	}

	lower := b
	if lower >= 'A' && lower <= 'Z' {
		lower += 'a' - 'A'
	}
	if ak, ok := axisKeys[lower]; ok {
		k.axes[ak.axis] = ak.value
		k.axisUntil[ak.axis] = k.now().Add(k.movePulse)
		return
	}
	if id, ok := buttonKeys[lower]; ok {
		k.pending[id] = true
	}
}

func (k *Keyboard) quitRequested() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.quit
}

// snapshot reports the virtual pad. A pending press is reported only if
// the button was released in the previous snapshot, so two quick presses
// come out as press, release, press.
func (k *Keyboard) snapshot() control.Snapshot {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	snap := control.Snapshot{
		Axes:    make([]float64, control.XBoxAxisCount),
		Buttons: make([]bool, control.XBoxButtonCount),
		Stamp:   now,
	}
	for i := range snap.Axes {
		if now.Before(k.axisUntil[i]) {
			snap.Axes[i] = k.axes[i]
		}
	}
	for id := range snap.Buttons {
		if k.pending[id] && !k.lastButtons[id] {
			snap.Buttons[id] = true
			delete(k.pending, id)
		}
		k.lastButtons[id] = snap.Buttons[id]
	}
	return snap
}

func (k *Keyboard) print(s string) {
	if k.out == nil {
		return
	}
	k.outMu.Lock()
	defer k.outMu.Unlock()
	_, _ = io.WriteString(k.out, s)
}

func (k *Keyboard) printHelp() {
	k.print("[teleop] keys:\r\n" +
		"  W/S: up/down   A/D: yaw left/right\r\n" +
		"  I/K: forward/back   J/L: strafe left/right\r\n" +
		"  Space/X: hover (release sticks)\r\n" +
		"  T: takeoff   G: land\r\n" +
		"  1/2/3/4: flip forward/right/back/left\r\n" +
		"  Arrows: nudge up/down/left/right\r\n" +
		"  ?: help   Q/Ctrl-C: quit\r\n")
}

func (k *Keyboard) renderStatusLine(snap control.Snapshot) {
	if k.out == nil {
		return
	}
	line := fmt.Sprintf(
		"[THR:%+.0f STR:%+.0f VRT:%+.0f YAW:%+.0f]",
		snap.Axes[control.XBoxAxisRightFB],
		snap.Axes[control.XBoxAxisRightLR],
		snap.Axes[control.XBoxAxisLeftFB],
		snap.Axes[control.XBoxAxisLeftLR],
	)

	k.mu.Lock()
	width := k.statusWidth
	if len(line) > k.statusWidth {
		k.statusWidth = len(line)
	}
	k.mu.Unlock()

	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	k.print("\r" + line + padding)
}
