package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Command is a single process invocation.
type Command struct {
	Name  string
	Args  []string
	Stdin io.Reader
	Env   []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

type Runner interface {
	Output(ctx context.Context, cmd Command) ([]byte, error)
	Stream(ctx context.Context, cmd Command) (io.ReadCloser, error)
}

// ExitError is returned when a command exits with a non-zero code.
type ExitError struct {
	Command  string
	Code     int
	Stderr   string
	NotFound bool
}

func (e *ExitError) Error() string {
	if e.NotFound {
		return fmt.Sprintf("command not found: %s", e.Command)
	}
	msg := fmt.Sprintf("%q exited with code %d", e.Command, e.Code)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

type execRunner struct {
	env []string
}

func NewExecRunner(env ...string) *execRunner {
	return &execRunner{env: env}
}

func (r *execRunner) command(ctx context.Context, cmd Command) *exec.Cmd {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Env = append(append(os.Environ(), r.env...), cmd.Env...)
	c.Stdin = cmd.Stdin
	return c
}

func (r *execRunner) Output(ctx context.Context, cmd Command) ([]byte, error) {
	c := r.command(ctx, cmd)
	var stderr bytes.Buffer
	c.Stderr = &stderr

	log.Debug().Msgf("running: %s", cmd)
	out, err := c.Output()
	if err != nil {
		return out, wrapExecError(cmd, err, stderr.String())
	}
	return out, nil
}

func (r *execRunner) Stream(ctx context.Context, cmd Command) (io.ReadCloser, error) {
	c := r.command(ctx, cmd)
	stdout, err := c.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout of %q: %w", cmd, err)
	}
	// debug-log interleaves warnings on stderr
	c.Stderr = c.Stdout

	log.Debug().Msgf("streaming: %s", cmd)
	if err := c.Start(); err != nil {
		return nil, wrapExecError(cmd, err, "")
	}
	return &streamCloser{ReadCloser: stdout, cmd: c, name: cmd.String()}, nil
}

type streamCloser struct {
	io.ReadCloser
	cmd  *exec.Cmd
	name string
}

func (s *streamCloser) Close() error {
	_ = s.ReadCloser.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	if err := s.cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && !exitErr.Exited() {
			// killed by us
			return nil
		}
		log.Debug().Err(err).Msgf("stream %q terminated", s.name)
	}
	return nil
}

func wrapExecError(cmd Command, err error, stderr string) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Command: cmd.String(), Code: exitErr.ExitCode(), Stderr: stderr}
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return &ExitError{Command: cmd.String(), Code: -1, NotFound: true}
	}
	return fmt.Errorf("failed to run %q: %w", cmd, err)
}

// Shell runs line through /bin/sh -c.
func Shell(line string) Command {
	return Command{Name: "sh", Args: []string{"-c", line}}
}
