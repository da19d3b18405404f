package cli

import "os"

const DefaultJujuCommand = "juju"

// Juju builds juju invocations, optionally bound to a model.
type Juju struct {
	Binary string
	Model  string
}

func NewJuju(binary, model string) Juju {
	if binary == "" {
		binary = JujuCommandFromEnv()
	}
	return Juju{Binary: binary, Model: model}
}

// JujuCommandFromEnv honours JHACK_JUJU_COMMAND.
func JujuCommandFromEnv() string {
	if cmd := os.Getenv("JHACK_JUJU_COMMAND"); cmd != "" {
		return cmd
	}
	return DefaultJujuCommand
}

// InModel returns a copy bound to model; an empty model keeps the current binding.
func (j Juju) InModel(model string) Juju {
	if model != "" {
		j.Model = model
	}
	return j
}

// Command returns `juju <sub> [-m model] args...`.
func (j Juju) Command(sub string, args ...string) Command {
	full := []string{sub}
	if j.Model != "" {
		full = append(full, "-m", j.Model)
	}
	full = append(full, args...)
	return Command{Name: j.Binary, Args: full}
}

// Global returns `juju <sub> args...` ignoring the bound model.
func (j Juju) Global(sub string, args ...string) Command {
	return Command{Name: j.Binary, Args: append([]string{sub}, args...)}
}
