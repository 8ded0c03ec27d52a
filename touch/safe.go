package touch

import (
	"context"
	"time"
)

// WithDevice runs fn against a started Device and always stops it afterwards,
// after one settle delay so the last gesture can land.
func WithDevice(ctx context.Context, shell Shell, cfg Config, fn func(*Device) error) error {
	device, err := NewDevice(ctx, shell, cfg)
	if err != nil {
		return err
	}
	defer func() {
		time.Sleep(device.config.SettleDelay)
		device.Stop()
	}()

	return fn(device)
}

// WithConnection runs fn against a bare helper connection and always
// disconnects and stops the helper afterwards.
func WithConnection(ctx context.Context, shell Shell, cfg Config, fn func(*Connection) error) error {
	server, err := NewServer(ctx, shell, cfg)
	if err != nil {
		return err
	}

	connection := NewConnection(server)
	defer func() {
		connection.Disconnect()
		server.Stop()
	}()

	return fn(connection)
}
