package fire

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

// HookEnv is what a dispatch script sees in its environment.
type HookEnv struct {
	App            string
	UnitID         int
	ModelName      string
	ModelUUID      string
	Cloud          string
	JujuVersion    string
	Event          string
	ContainerNames string
}

func (e *HookEnv) tag() string {
	return fmt.Sprintf("unit-%s-%d", e.App, e.UnitID)
}

//go:embed hook_env.tpl
var hookEnvSource string

var hookEnvTemplate = template.Must(template.New("hook_env").Funcs(template.FuncMap{
	"tag":      func(e *HookEnv) string { return e.tag() },
	"charmDir": func(e *HookEnv) string { return "/var/lib/juju/agents/" + e.tag() + "/charm" },
}).Parse(hookEnvSource))

// Render returns the environment as ordered KEY=value lines.
func (e *HookEnv) Render() ([]string, error) {
	buffer := new(bytes.Buffer)
	if err := hookEnvTemplate.Execute(buffer, e); err != nil {
		return nil, fmt.Errorf("failed to render hook environment: %w", err)
	}
	var lines []string
	scanner := bufio.NewScanner(buffer)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// Assignments renders the environment as shell assignments with single-quoted values.
func (e *HookEnv) Assignments() ([]string, error) {
	lines, err := e.Render()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		k, v, _ := strings.Cut(line, "=")
		out = append(out, fmt.Sprintf("%s='%s'", k, strings.ReplaceAll(v, "'", `'\''`)))
	}
	return out, nil
}
