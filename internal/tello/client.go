// Package tello talks to a Tello drone over its UDP text command protocol.
package tello

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"strings"
	"sync"
	"syscall"

	"github.com/Versifine/tellojoy/internal/control"
)

const (
	DefaultAddr = "192.168.10.1:8889"
	maxReply    = 1500
	rcLimit     = 100
)

var ErrClosed = errors.New("tello connection closed")

// Client sends commands to one drone. Replies carry no request id, so calls
// are serialized on the socket; rc updates are never answered and bypass
// that queue.
type Client struct {
	conn  net.Conn
	speed int

	callMu  sync.Mutex
	replies chan string
	done    chan struct{}
	once    sync.Once
}

// Dial opens the command socket. localAddr may be empty for an ephemeral
// port. speed is the percentage of the rc range a full stick deflection
// maps to.
func Dial(ctx context.Context, addr, localAddr string, speed int) (*Client, error) {
	if addr == "" {
		addr = DefaultAddr
	}
	d := net.Dialer{}
	if localAddr != "" {
		la, err := net.ResolveUDPAddr("udp", localAddr)
		if err != nil {
			return nil, fmt.Errorf("resolve local addr %s: %w", localAddr, err)
		}
		d.LocalAddr = la
	}
	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial tello %s: %w", addr, err)
	}
	return newClient(conn, speed), nil
}

func newClient(conn net.Conn, speed int) *Client {
	if speed <= 0 || speed > 100 {
		speed = 100
	}
	return &Client{
		conn:    conn,
		speed:   speed,
		replies: make(chan string, 1),
		done:    make(chan struct{}),
	}
}

// Listen reads replies until ctx ends or the socket is closed. It must be
// running for Call to see any answer.
func (c *Client) Listen(ctx context.Context) error {
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-c.done:
		}
	}()

	buf := make([]byte, maxReply)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			// No drone listening yet: the kernel reports the ICMP refusal
			// on the next read.
			if errors.Is(err, syscall.ECONNREFUSED) {
				slog.Debug("Tello unreachable", "error", err)
				continue
			}
			return fmt.Errorf("read tello reply: %w", err)
		}
		reply := strings.TrimSpace(string(buf[:n]))
		select {
		case c.replies <- reply:
		default:
			slog.Debug("Dropping unsolicited tello reply", "reply", reply)
		}
	}
}

// Connect puts the drone into SDK mode.
func (c *Client) Connect(ctx context.Context) error {
	res, err := c.Call(ctx, control.Request{Name: "command"})
	if err != nil {
		return fmt.Errorf("enter sdk mode: %w", err)
	}
	if !res.Success {
		return fmt.Errorf("enter sdk mode: drone answered %q", res.Message)
	}
	slog.Info("Tello SDK mode enabled", "addr", c.conn.RemoteAddr())
	return nil
}

// Call sends req and waits for the drone's "ok" or error reply.
func (c *Client) Call(ctx context.Context, req control.Request) (control.Result, error) {
	c.callMu.Lock()
	defer c.callMu.Unlock()

	// Anything left over belongs to a call that already gave up.
	select {
	case stale := <-c.replies:
		slog.Debug("Discarding stale tello reply", "reply", stale)
	default:
	}

	if _, err := c.conn.Write([]byte(req.Command())); err != nil {
		if c.isClosed() {
			return control.Result{}, ErrClosed
		}
		return control.Result{}, fmt.Errorf("send %q: %w", req.Command(), err)
	}

	select {
	case reply := <-c.replies:
		return control.Result{Success: strings.EqualFold(reply, "ok"), Message: reply}, nil
	case <-ctx.Done():
		return control.Result{}, fmt.Errorf("await reply to %q: %w", req.Command(), ctx.Err())
	case <-c.done:
		return control.Result{}, ErrClosed
	}
}

// SendVelocity sends the command as an rc stick update.
func (c *Client) SendVelocity(v control.Velocity) error {
	a, b, cc, d := RC(v, c.speed)
	if _, err := fmt.Fprintf(c.conn, "rc %d %d %d %d", a, b, cc, d); err != nil {
		if c.isClosed() {
			return ErrClosed
		}
		return fmt.Errorf("send rc: %w", err)
	}
	return nil
}

// RC converts a body-frame velocity (x forward, y left, z up, yaw
// counter-clockwise) into Tello rc channels (roll right, pitch forward,
// throttle up, yaw clockwise), each scaled by speed percent and clamped.
func RC(v control.Velocity, speed int) (roll, pitch, throttle, yaw int) {
	scale := func(x float64) int {
		n := int(math.Round(x * float64(speed)))
		if n > rcLimit {
			return rcLimit
		}
		if n < -rcLimit {
			return -rcLimit
		}
		return n
	}
	return scale(-v.Linear.Y), scale(v.Linear.X), scale(v.Linear.Z), scale(-v.Angular.Z)
}

func (c *Client) isClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}
