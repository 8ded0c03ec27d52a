package touch

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mobile-next/touchcli/utils"
)

// Installer pushes the helper artifact to the device when it is missing.
type Installer struct {
	shell      Shell
	localPath  string
	remotePath string
}

func NewInstaller(shell Shell, cfg Config) *Installer {
	cfg = cfg.withDefaults()
	return &Installer{
		shell:      shell,
		localPath:  cfg.LocalArtifactPath,
		remotePath: cfg.RemoteArtifactPath,
	}
}

// EnsureInstalled pushes the artifact unless the remote directory already lists it.
func (i *Installer) EnsureInstalled(ctx context.Context) error {
	if i.IsInstalled(ctx) {
		utils.Verbose("helper already installed on %s", i.shell.DeviceID())
		return nil
	}

	return i.Push(ctx)
}

// IsInstalled reports whether the remote artifact exists. A failed listing counts as absent.
func (i *Installer) IsInstalled(ctx context.Context) bool {
	entries, err := i.shell.ListDir(ctx, path.Dir(i.remotePath))
	if err != nil {
		utils.Verbose("failed to list %s on %s: %v", path.Dir(i.remotePath), i.shell.DeviceID(), err)
		return false
	}

	name := path.Base(i.remotePath)
	for _, entry := range entries {
		if strings.TrimSpace(entry) == name {
			return true
		}
	}

	return false
}

// Push copies the local artifact to the device and makes it world readable.
func (i *Installer) Push(ctx context.Context) error {
	localPath, cleanup, err := i.resolveLocalPath()
	if err != nil {
		return err
	}
	defer cleanup()

	utils.Info("pushing %s to %s on %s", localPath, i.remotePath, i.shell.DeviceID())
	if err := i.shell.Push(ctx, localPath, i.remotePath); err != nil {
		return fmt.Errorf("%w: push %s: %v", ErrRemoteCommand, localPath, err)
	}

	if err := i.shell.Chmod(ctx, "644", i.remotePath); err != nil {
		return fmt.Errorf("%w: chmod %s: %v", ErrRemoteCommand, i.remotePath, err)
	}

	utils.Info("helper installed on %s", i.shell.DeviceID())
	return nil
}

// resolveLocalPath downloads http(s) artifacts to a temp file; local paths
// must exist.
func (i *Installer) resolveLocalPath() (string, func(), error) {
	noop := func() {}

	if strings.HasPrefix(i.localPath, "http://") || strings.HasPrefix(i.localPath, "https://") {
		dir, err := os.MkdirTemp("", "touchcli-")
		if err != nil {
			return "", noop, fmt.Errorf("failed to create temp dir: %w", err)
		}

		target := filepath.Join(dir, path.Base(i.localPath))
		utils.Verbose("downloading helper from %s", i.localPath)
		if err := utils.DownloadFile(i.localPath, target); err != nil {
			_ = os.RemoveAll(dir)
			return "", noop, fmt.Errorf("%w: %s: %v", ErrArtifactMissing, i.localPath, err)
		}

		return target, func() { _ = os.RemoveAll(dir) }, nil
	}

	if !utils.FileExists(i.localPath) {
		return "", noop, fmt.Errorf("%w: %s", ErrArtifactMissing, i.localPath)
	}

	return i.localPath, noop, nil
}
