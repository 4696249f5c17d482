package media

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

// CommandResult captures one external command invocation.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner abstracts process execution so tests can fake yt-dlp,
// ffmpeg and ffprobe.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
}

// ExecRunner executes commands via os/exec and logs each invocation.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	result := CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		slog.Error("command failed",
			"command", name,
			"args", strings.Join(args, " "),
			"exitCode", result.ExitCode,
			"duration", time.Since(start),
			"stderr", result.Stderr)
		return result, fmt.Errorf("%s failed: %w\nstderr: %s", name, err, result.Stderr)
	}

	slog.Debug("command finished",
		"command", name,
		"args", strings.Join(args, " "),
		"duration", time.Since(start))
	return result, nil
}

// CheckExecutables verifies that every named tool is on PATH. Run it before
// any work starts so a missing tool fails the run up front.
func CheckExecutables(names ...string) error {
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			return fmt.Errorf("required executable %q not found in PATH: %w", name, err)
		}
	}
	return nil
}
