package ffwd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/canonical/jhack/pkg/service/admin"
)

const hookIntervalKey = "update-status-hook-interval"

type Options struct {
	Model string
	// Timeout in seconds; zero runs until ctx is done.
	Timeout int
	// FastInterval in seconds.
	FastInterval int
	// SlowInterval is restored on exit, e.g. 5m.
	SlowInterval string
}

type FastForwarder struct {
	models admin.ModelManagement
	out    io.Writer
	second time.Duration
}

func NewFastForwarder(models admin.ModelManagement, out io.Writer) *FastForwarder {
	return &FastForwarder{models: models, out: out, second: time.Second}
}

// Run speeds up update-status until the timeout expires or ctx is done, then
// restores the slow interval.
func (f *FastForwarder) Run(ctx context.Context, opts *Options) (err error) {
	if opts.FastInterval <= 0 {
		opts.FastInterval = 5
	}
	if opts.SlowInterval == "" {
		opts.SlowInterval = "5m"
	}

	fast := fmt.Sprintf("%ds", opts.FastInterval)
	if err := f.models.SetModelConfig(ctx, opts.Model, hookIntervalKey, fast); err != nil {
		return err
	}
	defer func() {
		restoreErr := f.models.SetModelConfig(context.WithoutCancel(ctx), opts.Model, hookIntervalKey, opts.SlowInterval)
		if restoreErr != nil {
			log.Error().Err(restoreErr).Msgf("failed to restore %s=%s", hookIntervalKey, opts.SlowInterval)
			if err == nil {
				err = restoreErr
			}
		}
	}()

	fmt.Fprintln(f.out, "fast-forwarding... (CTRL+C to abort)")
	if opts.Timeout > 0 {
		fmt.Fprintf(f.out, "\ttimeout set at %ds\n\n", opts.Timeout)
	}

	ticker := time.NewTicker(time.Duration(opts.FastInterval) * f.second)
	defer ticker.Stop()
	var deadline <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(time.Duration(opts.Timeout) * f.second)
		defer timer.Stop()
		deadline = timer.C
	}

	elapsed := 0
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(f.out, "(aborted)")
			return nil
		case <-deadline:
			fmt.Fprint(f.out, " ||\n")
			return nil
		case <-ticker.C:
			elapsed += opts.FastInterval
			if opts.Timeout > 0 {
				fmt.Fprint(f.out, max(opts.Timeout-elapsed, 0))
			} else {
				fmt.Fprint(f.out, ".")
			}
		}
	}
}
