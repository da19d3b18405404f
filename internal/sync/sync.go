package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/canonical/jhack/pkg/model"
	"github.com/canonical/jhack/pkg/service/status"
	"github.com/canonical/jhack/pkg/service/unit"
)

const (
	DefaultRemoteRoot   = "/var/lib/juju/agents/unit-{app}-{unit_id}/charm/"
	remoteVenvRoot      = "/var/lib/juju/agents/unit-{app}-{unit_id}/charm/venv/"
	DefaultIncludeFiles = `.*\.py$`
	DefaultContainer    = "charm"
	maxConcurrentPushes = 16
)

var DefaultSourceDirs = []string{"./src", "./lib"}

type Options struct {
	// Targets are unit or app names; `*` selects every app. Empty means
	// the apps running the charm in the working directory.
	Targets         []string
	SourceDirs      []string
	Touch           []string
	RemoteRoot      string
	Container       string
	RefreshRate     time.Duration
	NonRecursive    bool
	DryRun          bool
	IncludeFiles    string
	SkipInitialSync bool
	Venv            string
	Model           string
}

func (o *Options) withDefaults() {
	if len(o.SourceDirs) == 0 {
		o.SourceDirs = DefaultSourceDirs
	}
	if o.RemoteRoot == "" {
		o.RemoteRoot = DefaultRemoteRoot
	}
	if o.IncludeFiles == "" {
		o.IncludeFiles = DefaultIncludeFiles
	}
	if o.Container == "" {
		o.Container = DefaultContainer
	}
	if o.RefreshRate <= 0 {
		o.RefreshRate = time.Second
	}
}

// Syncer pushes local charm sources to deployed units.
type Syncer struct {
	status status.StatusService
	units  unit.UnitService
	out    io.Writer
	cwd    string

	// watching is called once the watcher is running.
	watching func()
}

func NewSyncer(statusSvc status.StatusService, units unit.UnitService, out io.Writer) *Syncer {
	cwd, err := os.Getwd()
	if err != nil {
		log.Warn().Err(err).Msg("cannot determine working directory")
	}
	return &Syncer{status: statusSvc, units: units, out: out, cwd: cwd}
}

// WithWorkdir sets the directory local paths and charm metadata are resolved against.
func (s *Syncer) WithWorkdir(dir string) *Syncer {
	s.cwd = dir
	return s
}

type charmMeta struct {
	Name string `yaml:"name"`
}

func readCharmName(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var meta charmMeta
	if err := yaml.Unmarshal(b, &meta); err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return meta.Name, nil
}

// LocalCharmName reads the charm name from charmcraft.yaml, falling back to metadata.yaml.
func LocalCharmName(dir string) (string, error) {
	name, err := readCharmName(filepath.Join(dir, "charmcraft.yaml"))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("you need to cd to a charm repo root for `jhack sync` to work without targets argument. " +
			"Alternatively, pass a juju unit/application name as first argument")
	}
	if err != nil {
		return "", err
	}
	if name != "" {
		return name, nil
	}
	name, err = readCharmName(filepath.Join(dir, "metadata.yaml"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("could not find name in charmcraft.yaml / metadata.yaml. Specify a target manually")
	}
	return name, nil
}

// ResolveUnits expands the sync targets into unit names, sorted.
func (s *Syncer) ResolveUnits(st *model.Status, targets []string) ([]string, error) {
	if len(st.Applications) == 0 {
		return nil, fmt.Errorf("no applications found in `juju status`. Is the model still being spun up?")
	}

	if len(targets) == 0 {
		name, err := LocalCharmName(s.cwd)
		if err != nil {
			return nil, err
		}
		for app, meta := range st.Applications {
			if meta.CharmName == name {
				targets = append(targets, app)
			}
		}
		log.Debug().Msgf("charm %s is deployed as %v", name, targets)
	}
	if slices.Contains(targets, "*") {
		targets = targets[:0:0]
		for app := range st.Applications {
			targets = append(targets, app)
		}
	}

	seen := map[string]bool{}
	var names []string
	for _, target := range targets {
		if strings.Contains(target, "/") {
			if !seen[target] {
				seen[target] = true
				names = append(names, target)
			}
			continue
		}
		units, err := status.Units(st, target, nil)
		if err != nil {
			return nil, err
		}
		for _, u := range units {
			if !seen[u.UnitName()] {
				seen[u.UnitName()] = true
				names = append(names, u.UnitName())
			}
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no targets found")
	}
	slices.Sort(names)
	return names, nil
}

// RemotePath maps a local file onto a unit. Files under venv go to the charm venv,
// everything else keeps its path relative to the working directory.
func (s *Syncer) RemotePath(file, unitName, remoteRoot, venv string) (string, error) {
	app, id, _ := strings.Cut(unitName, "/")
	fill := strings.NewReplacer("{app}", app, "{unit_id}", id)

	abs, err := filepath.Abs(file)
	if err != nil {
		return "", err
	}
	if venv != "" && strings.HasPrefix(abs, venv) {
		_, pkg, ok := strings.Cut(abs, "/site-packages/")
		if !ok {
			return "", fmt.Errorf("%s is in the venv but not under site-packages", file)
		}
		return fill.Replace(remoteVenvRoot + pkg), nil
	}

	rel, err := filepath.Rel(s.cwd, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside of %s", file, s.cwd)
	}
	return fill.Replace(remoteRoot + filepath.ToSlash(rel)), nil
}

type pushTarget struct {
	remote    string
	container string
	substrate model.Substrate
	root      string
	venv      string
	dryRun    bool
}

// push sends every file to every unit concurrently. All pushes are attempted; the
// first failure is returned.
func (s *Syncer) push(ctx context.Context, units, files []string, pt *pushTarget) error {
	type result struct {
		unit, file string
		err        error
	}
	results := make([]result, 0, len(units)*len(files))
	for _, u := range units {
		for _, f := range files {
			results = append(results, result{unit: u, file: f})
		}
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrentPushes)
	for i := range results {
		res := &results[i]
		g.Go(func() error {
			remote, err := s.RemotePath(res.file, res.unit, pt.root, pt.venv)
			if err == nil {
				err = s.units.PushFile(ctx, &model.PushRequest{
					Unit:       res.unit,
					LocalPath:  res.file,
					RemotePath: remote,
					FullPath:   true,
					Container:  pt.container,
					Substrate:  pt.substrate,
					Mkdir:      true,
					DryRun:     pt.dryRun,
				})
			}
			res.err = err
			return err
		})
	}
	err := g.Wait()

	for _, res := range results {
		switch {
		case res.err != nil:
			log.Error().Err(res.err).Msgf("failed to sync %s -> %s", res.file, res.unit)
		case !pt.dryRun:
			fmt.Fprintf(s.out, "synced %s -> %s\n", s.display(res.file), res.unit)
		}
	}
	return err
}

func (s *Syncer) display(file string) string {
	if rel, err := filepath.Rel(s.cwd, file); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return file
}

// Run resolves the targets, performs the initial sync and then watches the source
// dirs until ctx is done. With Touch set it pushes those files and returns.
func (s *Syncer) Run(ctx context.Context, opts *Options) error {
	opts.withDefaults()

	st, err := s.status.GetStatus(ctx, &model.GetStatusRequest{Model: opts.Model})
	if err != nil {
		return err
	}
	units, err := s.ResolveUnits(st, opts.Targets)
	if err != nil {
		return err
	}

	pt := &pushTarget{root: opts.RemoteRoot, dryRun: opts.DryRun, substrate: model.SubstrateMachine}
	if status.IsK8s(st) {
		pt.substrate = model.SubstrateK8s
		pt.container = opts.Container
	}
	if opts.Venv != "" {
		if pt.venv, err = filepath.Abs(s.resolve(opts.Venv)); err != nil {
			return err
		}
	}

	fmt.Fprintf(s.out, "Ready to sync to: \n\t%s\n", strings.Join(units, "\n\t"))

	if len(opts.Touch) > 0 {
		fmt.Fprintln(s.out, "Touching: ")
		files := make([]string, 0, len(opts.Touch))
		for _, f := range opts.Touch {
			files = append(files, s.resolve(f))
		}
		if err := s.push(ctx, units, files, pt); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Initial sync done.")
		return nil
	}

	dirs := make([]string, 0, len(opts.SourceDirs)+1)
	for _, d := range opts.SourceDirs {
		dirs = append(dirs, s.resolve(d))
	}
	if pt.venv != "" {
		dirs = append(dirs, pt.venv)
	}

	w, err := newWatcher(dirs, opts.IncludeFiles, !opts.NonRecursive)
	if err != nil {
		return err
	}
	defer w.Close()

	files := w.Files()
	if len(files) == 0 {
		return fmt.Errorf("nothing to watch. Pass something to --source")
	}

	if !opts.SkipInitialSync {
		fmt.Fprintln(s.out, "initiating initial sync...")
		if err := s.push(ctx, units, files, pt); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "remote up to speed with local. Starting watcher...")
	}

	fmt.Fprintf(s.out, "watching: \n\t%s\n", strings.Join(files, "\n\t"))
	fmt.Fprintln(s.out, "\nKill the process (Ctrl+C) to interrupt. Any local changes will be pushed to the remote(s).")

	if s.watching != nil {
		s.watching()
	}
	return w.Watch(ctx, opts.RefreshRate, func(changed []string) {
		if err := s.push(ctx, units, changed, pt); err != nil {
			log.Error().Err(err).Msg("sync failed; will retry on next change")
		}
	})
}

func (s *Syncer) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.cwd, p)
}
