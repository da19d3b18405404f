package tail

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/canonical/jhack/internal/logs"
	"github.com/canonical/jhack/internal/render"
	"github.com/canonical/jhack/pkg/model"
	logsvc "github.com/canonical/jhack/pkg/service/logs"
	"github.com/canonical/jhack/pkg/service/status"
	"github.com/canonical/jhack/pkg/types"
)

var Levels = []string{"DEBUG", "TRACE", "INFO", "ERROR"}

const clearScreen = "\033[H\033[2J"

type Options struct {
	// Targets is a `;`-separated list of units or apps.
	Targets       string
	AddNewTargets bool
	Level         string
	Replay        bool
	Watch         bool
	DryRun        bool
	Length        int
	Files         []string
	Model         string
}

type Tailer struct {
	status status.StatusService
	logs   logsvc.LogService
	r      *render.Renderer
}

func NewTailer(statusSvc status.StatusService, logSvc logsvc.LogService, r *render.Renderer) *Tailer {
	return &Tailer{status: statusSvc, logs: logSvc, r: r}
}

func parseLevel(level string) (string, error) {
	if level == "" {
		return "DEBUG", nil
	}
	up := strings.ToUpper(level)
	for _, l := range Levels {
		if l == up {
			return up, nil
		}
	}
	return "", fmt.Errorf("invalid level %q; expected one of %s", level, strings.Join(Levels, "|"))
}

// Targets resolves a `;`-separated target list. Unit names are taken as-is; status is
// only queried to expand app names or when no targets are given.
func (t *Tailer) Targets(ctx context.Context, expr, modelName string) ([]types.Target, error) {
	var st *model.Status
	loadStatus := func() (*model.Status, error) {
		if st != nil {
			return st, nil
		}
		var err error
		st, err = t.status.GetStatus(ctx, &model.GetStatusRequest{Model: modelName})
		return st, err
	}

	if strings.TrimSpace(expr) == "" {
		s, err := loadStatus()
		if err != nil {
			return nil, err
		}
		return status.AllUnits(s), nil
	}

	seen := map[string]bool{}
	var out []types.Target
	add := func(ts ...types.Target) {
		for _, target := range ts {
			if !seen[target.UnitName()] {
				seen[target.UnitName()] = true
				out = append(out, target)
			}
		}
	}
	for _, part := range strings.Split(expr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "/") {
			target, err := types.ParseTarget(part)
			if err != nil {
				return nil, err
			}
			add(target)
			continue
		}
		s, err := loadStatus()
		if err != nil {
			return nil, err
		}
		units, err := status.Units(s, part, nil)
		if err != nil {
			return nil, err
		}
		add(units...)
	}
	return out, nil
}

type lineSource func() (string, bool, error)

// Run tails charm events and prints the event table.
func (t *Tailer) Run(ctx context.Context, opts *Options) error {
	out := t.r.Writer()

	level, err := parseLevel(opts.Level)
	if err != nil {
		return err
	}
	if level != "DEBUG" && level != "TRACE" {
		fmt.Fprintf(out, "we won't be able to track events with level=%s\n", level)
	}

	addNew := opts.AddNewTargets
	if opts.Targets != "" && addNew {
		fmt.Fprintln(out, "targets provided; overruling add_new_targets param.")
		addNew = false
	}

	req := &model.DebugLogRequest{Tail: opts.Watch, Replay: opts.Replay, Level: level}
	if opts.DryRun {
		fmt.Fprintln(out, t.logs.DebugLogCommand(req).String())
		return nil
	}

	var targets []types.Target
	if opts.Targets != "" || len(opts.Files) == 0 {
		targets, err = t.Targets(ctx, opts.Targets, opts.Model)
		if err != nil {
			return err
		}
	} else {
		addNew = true
	}

	next, closeSource, err := t.source(ctx, opts, req)
	if err != nil {
		return err
	}
	defer closeSource()

	proc := NewProcessor(targets, addNew, opts.Length)
	for {
		line, ok, err := next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		isEvent, err := proc.Process(line)
		if err != nil {
			return err
		}
		if isEvent && opts.Watch {
			fmt.Fprint(out, clearScreen)
			t.r.Println(proc.Render(t.r))
		}
	}

	if !opts.Watch {
		t.r.Println(proc.Render(t.r))
	}
	fmt.Fprintf(out, "processed %d events.\n", proc.EventCount())
	return nil
}

func (t *Tailer) source(ctx context.Context, opts *Options, req *model.DebugLogRequest) (lineSource, func(), error) {
	if len(opts.Files) > 0 {
		il, err := logs.Open(opts.Files...)
		if err != nil {
			return nil, nil, err
		}
		next := func() (string, bool, error) {
			if err := ctx.Err(); err != nil {
				return "", false, nil
			}
			line, err := il.ReadLine()
			if err != nil || line == "" {
				return "", false, err
			}
			return line, true, nil
		}
		return next, func() { il.Close() }, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	lines, errs := t.logs.DebugLog(ctx, req)
	if lines == nil {
		cancel()
		return nil, nil, <-errs
	}
	next := func() (string, bool, error) {
		line, ok := <-lines
		if ok {
			return line, true, nil
		}
		err := <-errs
		if err == io.EOF || ctx.Err() != nil {
			return "", false, nil
		}
		return "", false, err
	}
	return next, func() {
		cancel()
		for range lines {
		}
		log.Debug().Msg("debug-log stream closed")
	}, nil
}
