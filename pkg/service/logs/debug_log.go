package logs

import (
	"bufio"
	"context"

	"github.com/canonical/jhack/pkg/cli"
	"github.com/canonical/jhack/pkg/model"
)

type LogService interface {
	DebugLog(ctx context.Context, req *model.DebugLogRequest) (<-chan string, <-chan error)
	DebugLogCommand(req *model.DebugLogRequest) cli.Command
}

type logService struct {
	runner cli.Runner
	juju   cli.Juju
}

func NewLogServiceClient(runner cli.Runner, juju cli.Juju) *logService {
	return &logService{
		runner: runner,
		juju:   juju,
	}
}

func (c *logService) DebugLogCommand(req *model.DebugLogRequest) cli.Command {
	args := []string{}
	if req.Tail {
		args = append(args, "--tail")
	} else {
		args = append(args, "--no-tail")
	}
	if req.Replay {
		args = append(args, "--replay")
	}
	if req.Level != "" {
		args = append(args, "--level", req.Level)
	}
	for _, inc := range req.Include {
		args = append(args, "--include", inc)
	}
	if req.Date {
		args = append(args, "--date")
	}
	return c.juju.Command("debug-log", args...)
}

// DebugLog streams `juju debug-log` line by line. Both channels are closed when
// the process exits or ctx is done.
func (c *logService) DebugLog(ctx context.Context, req *model.DebugLogRequest) (<-chan string, <-chan error) {
	stream, err := c.runner.Stream(ctx, c.DebugLogCommand(req))
	if err != nil {
		lineCh := make(chan string)
		close(lineCh)
		errCh := make(chan error, 1)
		errCh <- err
		close(errCh)
		return lineCh, errCh
	}

	lineCh := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(lineCh)
		defer close(errCh)
		defer stream.Close()

		scanner := bufio.NewScanner(stream)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lineCh <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			errCh <- err
		}
	}()

	return lineCh, errCh
}
