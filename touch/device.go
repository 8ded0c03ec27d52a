package touch

import (
	"context"
	"fmt"
	"sync"

	"github.com/mobile-next/touchcli/types"
)

// TapOptions control Tap. Zero values mean pressure 100, no hold, release at the end.
type TapOptions struct {
	// Pressure is sent verbatim when set, including 0.
	Pressure *int
	Duration int
	NoUp     bool
}

// SwipeOptions control Swipe. Duration is the wait in ms after each move.
type SwipeOptions struct {
	Pressure *int
	Duration int
	NoDown   bool
	NoUp     bool
}

// SmoothSwipeOptions control SmoothSwipe. Part is the number of steps per segment.
type SmoothSwipeOptions struct {
	SwipeOptions
	Part int
}

// Device drives gestures on one Android device through the helper.
type Device struct {
	shell  Shell
	config Config

	// gestureMu is held for a whole gesture so callers never interleave on the wire.
	gestureMu sync.Mutex

	mu         sync.Mutex
	server     *Server
	connection *Connection
}

// NewDevice starts a helper session for shell's device.
func NewDevice(ctx context.Context, shell Shell, cfg Config) (*Device, error) {
	cfg = cfg.withDefaults()
	d := &Device{
		shell:  shell,
		config: cfg,
	}
	if err := d.Start(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

// Start launches a new helper session.
func (d *Device) Start(ctx context.Context) error {
	server, err := NewServer(ctx, d.shell, d.config)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.server = server
	d.connection = NewConnection(server)
	d.mu.Unlock()
	return nil
}

// Stop disconnects and stops the helper. Safe to call more than once.
func (d *Device) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connection != nil {
		d.connection.Disconnect()
	}
	if d.server != nil {
		d.server.Stop()
	}
}

// Reset restarts the helper session.
func (d *Device) Reset(ctx context.Context) error {
	d.gestureMu.Lock()
	defer d.gestureMu.Unlock()

	d.Stop()
	return d.Start(ctx)
}

func (d *Device) ID() string {
	return d.shell.DeviceID()
}

func (d *Device) Connection() *Connection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connection
}

func (d *Device) Server() *Server {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.server
}

func (d *Device) Capabilities() Capabilities {
	return d.Connection().Capabilities()
}

func (d *Device) Heartbeat() bool {
	return d.Server().Heartbeat()
}

// Send writes raw protocol text, never in the middle of a gesture.
func (d *Device) Send(text string) error {
	d.gestureMu.Lock()
	defer d.gestureMu.Unlock()
	return d.Connection().Send(text)
}

// Tap presses every point at once with contacts 0..n-1, optionally holds
// for Duration ms, then releases them unless NoUp is set.
func (d *Device) Tap(points []types.Point, opts TapOptions) error {
	if len(points) == 0 {
		return fmt.Errorf("tap requires at least one point")
	}
	d.gestureMu.Lock()
	defer d.gestureMu.Unlock()

	pressure := pressureOrDefault(opts.Pressure)

	builder := NewCommandBuilder(d.config.SettleDelay)
	for contact, p := range points {
		builder.Down(contact, p.X, p.Y, pressure)
	}
	builder.Commit()

	if opts.Duration > 0 {
		builder.Wait(opts.Duration)
		builder.Commit()
	}

	if !opts.NoUp {
		for contact := range points {
			builder.Up(contact)
		}
	}

	return builder.Publish(d.Connection())
}

// Swipe drags contact 0 along points. The initial down and the final up are
// published separately from the moves so the touch registers before motion
// starts; NoDown and NoUp suppress them to chain swipes across calls.
func (d *Device) Swipe(points []types.Point, opts SwipeOptions) error {
	d.gestureMu.Lock()
	defer d.gestureMu.Unlock()
	return d.swipe(points, opts)
}

func (d *Device) swipe(points []types.Point, opts SwipeOptions) error {
	if len(points) == 0 {
		return fmt.Errorf("swipe requires at least one point")
	}
	pressure := pressureOrDefault(opts.Pressure)
	conn := d.Connection()
	builder := NewCommandBuilder(d.config.SettleDelay)
	const contact = 0

	if !opts.NoDown {
		first := points[0]
		points = points[1:]
		builder.Down(contact, first.X, first.Y, pressure)
		if err := builder.Publish(conn); err != nil {
			return err
		}
	}

	for _, p := range points {
		builder.Move(contact, p.X, p.Y, pressure)
		if opts.Duration > 0 {
			builder.Wait(opts.Duration)
		}
		builder.Commit()
	}
	if err := builder.Publish(conn); err != nil {
		return err
	}

	if !opts.NoUp {
		builder.Up(contact)
		if err := builder.Publish(conn); err != nil {
			return err
		}
	}

	return nil
}

// SmoothSwipe splits every segment of points into Part steps and swipes
// each segment on its own. The whole path is one gesture.
func (d *Device) SmoothSwipe(points []types.Point, opts SmoothSwipeOptions) error {
	d.gestureMu.Lock()
	defer d.gestureMu.Unlock()

	for i := 0; i+1 < len(points); i++ {
		segment := interpolate(points[i], points[i+1], opts.Part)
		if err := d.swipe(segment, opts.SwipeOptions); err != nil {
			return err
		}
	}
	return nil
}

// interpolate returns part+1 points from cur towards next using a truncated
// per-step offset, so the last point can fall short of next.
func interpolate(cur, next types.Point, part int) []types.Point {
	if part <= 0 {
		part = DefaultSmoothParts
	}

	dx := (next.X - cur.X) / part
	dy := (next.Y - cur.Y) / part

	points := make([]types.Point, 0, part+1)
	for i := 0; i <= part; i++ {
		points = append(points, types.Point{X: cur.X + i*dx, Y: cur.Y + i*dy})
	}
	return points
}

func pressureOrDefault(pressure *int) int {
	if pressure == nil {
		return DefaultPressure
	}
	return *pressure
}
