/*
Package upload copies report files to a remote location.
*/
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const (
	DefaultCommand = "scp"
	DefaultTimeout = 2 * time.Minute

	// waitDelay bounds the wait for stderr after the command was killed.
	waitDelay = 2 * time.Second
)

type Uploader interface {
	Upload(ctx context.Context, path, destination string) error
}

// SCP runs an scp-compatible command as `<Command> <Args...> <path> <destination>`.
type SCP struct {
	Command string
	Args    []string
	Timeout time.Duration
}

func (s SCP) Upload(ctx context.Context, path, destination string) error {
	command := s.Command
	if command == "" {
		command = DefaultCommand
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, s.Args...), path, destination)
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.WaitDelay = waitDelay

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s timed out after %s", command, timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s failed with status %d: %s", command, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("failed to execute %s: %w", command, err)
	}
	return nil
}

// Noop skips the upload.
type Noop struct{}

func (Noop) Upload(ctx context.Context, path, destination string) error {
	slog.InfoContext(ctx, "upload disabled, skipping", "path", path, "destination", destination)
	return nil
}
