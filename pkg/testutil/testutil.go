package testutil

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/canonical/jhack/pkg/cli"
)

// Call is a command recorded by FakeRunner.
type Call struct {
	Command cli.Command
	Stdin   string
}

func (c Call) String() string {
	return c.Command.String()
}

type Response struct {
	out  string
	err  error
	hits int
}

// Return scripts stdout for the matched command.
func (r *Response) Return(out string) *Response {
	r.out = out
	return r
}

func (r *Response) ReturnFixture(t testing.TB, name string) *Response {
	r.out = LoadFixture(t, name)
	return r
}

// Fail scripts a non-zero exit.
func (r *Response) Fail(code int, stderr string) *Response {
	r.err = &cli.ExitError{Code: code, Stderr: stderr}
	return r
}

func (r *Response) Err(err error) *Response {
	r.err = err
	return r
}

// FakeRunner is a scripted cli.Runner. Commands are matched by their full command
// line first, then by the longest scripted prefix.
type FakeRunner struct {
	mu        sync.Mutex
	responses map[string]*Response
	calls     []Call
}

func NewFakeRunner() *FakeRunner {
	return &FakeRunner{responses: map[string]*Response{}}
}

func (f *FakeRunner) On(cmdline string) *Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &Response{}
	f.responses[cmdline] = r
	return r
}

func (f *FakeRunner) match(cmdline string) *Response {
	if r, ok := f.responses[cmdline]; ok {
		return r
	}
	keys := make([]string, 0, len(f.responses))
	for k := range f.responses {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	for _, k := range keys {
		if strings.HasPrefix(cmdline, k) {
			return f.responses[k]
		}
	}
	return nil
}

func (f *FakeRunner) record(cmd cli.Command) *Response {
	var stdin string
	if cmd.Stdin != nil {
		b, _ := io.ReadAll(cmd.Stdin)
		stdin = string(b)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Command: cmd, Stdin: stdin})
	r := f.match(cmd.String())
	if r != nil {
		r.hits++
	}
	return r
}

func (f *FakeRunner) Output(ctx context.Context, cmd cli.Command) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := f.record(cmd)
	if r == nil {
		return nil, &cli.ExitError{Command: cmd.String(), Code: 127, Stderr: "no scripted response"}
	}
	if r.err != nil {
		if exitErr, ok := r.err.(*cli.ExitError); ok {
			e := *exitErr
			e.Command = cmd.String()
			return []byte(r.out), &e
		}
		return []byte(r.out), r.err
	}
	return []byte(r.out), nil
}

func (f *FakeRunner) Stream(ctx context.Context, cmd cli.Command) (io.ReadCloser, error) {
	out, err := f.Output(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(string(out))), nil
}

func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallStrings returns the recorded command lines, in call order.
func (f *FakeRunner) CallStrings() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// Called reports whether any recorded command line starts with prefix.
func (f *FakeRunner) Called(prefix string) bool {
	for _, c := range f.CallStrings() {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

// LoadFixture reads a file from the testdata directory shared by all packages.
func LoadFixture(t testing.TB, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(FixtureDir(t), name))
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", name, err)
	}
	return string(b)
}

// FixtureDir locates <module root>/testdata by walking up from the working directory.
func FixtureDir(t testing.TB) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "testdata")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("module root not found")
		}
		dir = parent
	}
}
