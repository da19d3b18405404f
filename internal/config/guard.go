package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

type Reason string

const (
	ReasonDevmodeTemp Reason = "devmode_temp"
	ReasonDevmodePerm Reason = "devmode_perm"
	ReasonUser        Reason = "user"
)

type Verdict struct {
	Allowed bool
	Reason  Reason
}

// Guard decides whether destructive commands may run.
type Guard struct {
	cfg    *Config
	getenv func(string) string
	in     *bufio.Reader
	out    io.Writer
}

func NewGuard(cfg *Config, in io.Reader, out io.Writer) *Guard {
	return &Guard{cfg: cfg, getenv: os.Getenv, in: bufio.NewReader(in), out: out}
}

func (g *Guard) WithEnv(getenv func(string) string) *Guard {
	g.getenv = getenv
	return g
}

// Devmode reports whether destructive commands are enabled without asking.
func (g *Guard) Devmode() (Verdict, bool) {
	if g.getenv("JHACK_PROFILE") == "devmode" {
		return Verdict{Allowed: true, Reason: ReasonDevmodeTemp}, true
	}
	if g.cfg.Bool(KeyDevmode) {
		return Verdict{Allowed: true, Reason: ReasonDevmodePerm}, true
	}
	return Verdict{}, false
}

// CheckDestructiveCommandsAllowed asks the user unless devmode is on.
// example, if set, is shown as a command the operation may run.
func (g *Guard) CheckDestructiveCommandsAllowed(name, example string) Verdict {
	if v, ok := g.Devmode(); ok {
		return v
	}

	what := "this command"
	if name != "" {
		what = fmt.Sprintf("`jhack %s`", name)
	}
	fmt.Fprintf(g.out, "%s is a potentially destructive command", what)
	if example != "" {
		fmt.Fprintf(g.out, " (it may run `%s`)", example)
	}
	fmt.Fprintf(g.out, ". Are you sure you want to continue? [y/N] ")

	line, _ := g.in.ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	fmt.Fprintln(g.out)
	if answer == "yes" || answer == "y" {
		return Verdict{Allowed: true, Reason: ReasonUser}
	}

	fmt.Fprintf(g.out, "Aborting. Set `%s = true` in %s or JHACK_PROFILE=devmode to skip this check.\n",
		KeyDevmode, Path())
	return Verdict{Allowed: false, Reason: ReasonUser}
}

// Confirm asks a yes/no question; only y/yes counts as yes.
func (g *Guard) Confirm(question string) bool {
	fmt.Fprintf(g.out, "%s [y/N] ", question)
	line, _ := g.in.ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "yes" || answer == "y"
}

func (g *Guard) Config() *Config {
	return g.cfg
}
