package unit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/canonical/jhack/pkg/cli"
	"github.com/canonical/jhack/pkg/codec"
	"github.com/canonical/jhack/pkg/model"
)

type UnitService interface {
	ShowUnit(ctx context.Context, name string) (*model.UnitInfo, error)
	StatusLog(ctx context.Context, unit string) ([]model.StatusLogEntry, error)
	Exec(ctx context.Context, unit string, command ...string) (string, error)
	SSH(ctx context.Context, req *model.SSHRequest) (string, error)
	PushFile(ctx context.Context, req *model.PushRequest) error
	PushString(ctx context.Context, text string, req *model.PushRequest) error
	FetchFile(ctx context.Context, file *model.RemoteFile, localPath string) (string, error)
	RemoveFile(ctx context.Context, file *model.RemoteFile) error
	ModifyRemoteFile(ctx context.Context, file *model.RemoteFile, modify func(string) (string, error)) error
	Reset()
}

type unitService struct {
	runner  cli.Runner
	juju    cli.Juju
	codec   *codec.JujuCodec
	out     io.Writer
	snapped bool

	mu    sync.Mutex
	cache map[string]*model.UnitInfo

	outMu sync.Mutex
}

func NewUnitServiceClient(runner cli.Runner, juju cli.Juju, out io.Writer, snapped bool) *unitService {
	if out == nil {
		out = os.Stdout
	}
	return &unitService{
		runner:  runner,
		juju:    juju,
		codec:   codec.NewJujuCodec(),
		out:     out,
		snapped: snapped,
		cache:   map[string]*model.UnitInfo{},
	}
}

func (c *unitService) ShowUnit(ctx context.Context, name string) (*model.UnitInfo, error) {
	c.mu.Lock()
	cached, ok := c.cache[name]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	out, err := c.runner.Output(ctx, c.juju.Command("show-unit", name))
	if err != nil {
		return nil, fmt.Errorf("failed to show unit %s: %w", name, err)
	}
	info, err := codec.UnmarshalKeyed[model.UnitInfo](c.codec, out, codec.FormatYAML, name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse show-unit output for %s: %w", name, err)
	}

	c.mu.Lock()
	c.cache[name] = info
	c.mu.Unlock()
	return info, nil
}

// printf serialises writes to out; pushes may run concurrently.
func (c *unitService) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// Reset drops the show-unit cache.
func (c *unitService) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = map[string]*model.UnitInfo{}
}

func (c *unitService) StatusLog(ctx context.Context, unit string) ([]model.StatusLogEntry, error) {
	out, err := c.runner.Output(ctx, c.juju.Command("show-status-log", unit, "--days", "2", "--format", "json"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch status log of %s: %w", unit, err)
	}
	var entries []model.StatusLogEntry
	if err := c.codec.Unmarshal(out, codec.FormatJSON, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *unitService) Exec(ctx context.Context, unit string, command ...string) (string, error) {
	args := append([]string{"-u", unit, "--"}, command...)
	out, err := c.runner.Output(ctx, c.juju.Command("exec", args...))
	if err != nil {
		return string(out), fmt.Errorf("exec on %s failed: %w", unit, err)
	}
	return string(out), nil
}

func (c *unitService) sshCommand(unit, container string, args ...string) cli.Command {
	full := []string{}
	if container != "" {
		full = append(full, "--container", container)
	}
	full = append(full, unit)
	full = append(full, args...)
	return c.juju.Command("ssh", full...)
}

func (c *unitService) SSH(ctx context.Context, req *model.SSHRequest) (string, error) {
	cmd := c.sshCommand(req.Unit, req.Container, req.Args...)
	if req.Stdin != nil {
		cmd.Stdin = bytes.NewReader(req.Stdin)
	}
	out, err := c.runner.Output(ctx, cmd)
	if err != nil {
		return string(out), fmt.Errorf("ssh into %s failed: %w", req.Unit, err)
	}
	return string(out), nil
}
