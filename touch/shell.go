package touch

import (
	"context"
	"io"
)

// Shell is the remote shell capability for one device. The adb backed
// implementation lives in the devices package.
type Shell interface {
	DeviceID() string
	GetProp(ctx context.Context, name string) (string, error)
	ListDir(ctx context.Context, dir string) ([]string, error)
	Push(ctx context.Context, localPath, remotePath string) error
	Chmod(ctx context.Context, mode, remotePath string) error
	// Start runs command in a remote shell with all three stdio streams piped.
	Start(command string) (Process, error)
}

// Process is a running remote shell command.
type Process interface {
	Stdin() io.WriteCloser
	Stdout() io.ReadCloser
	Stderr() io.ReadCloser
	Kill() error
	Exited() bool
}
