package touch

import "errors"

var (
	// ErrDeviceUnreachable is returned when the presence check against the target device fails.
	ErrDeviceUnreachable = errors.New("device unreachable")

	// ErrArtifactMissing is returned when the helper must be pushed but the local artifact does not exist.
	ErrArtifactMissing = errors.New("local helper artifact not found")

	// ErrProcessLaunch is returned when the helper process could not be spawned.
	ErrProcessLaunch = errors.New("failed to launch helper process")

	// ErrHandshakeTimeout is logged, never returned, when the helper does not print its header in time.
	ErrHandshakeTimeout = errors.New("timed out waiting for helper header")

	// ErrConnectionClosed is returned by Send after Disconnect.
	ErrConnectionClosed = errors.New("helper connection already closed")

	// ErrRemoteCommand is returned when a remote shell invocation exits with a failure.
	ErrRemoteCommand = errors.New("remote command failed")
)
