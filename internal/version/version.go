package version

import (
	_ "embed"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed version.toml
var versionFile string

var versionPattern = regexp.MustCompile(`(?m)^version\s*=\s*"([^"]+)"`)

type versionDoc struct {
	Version string `toml:"version"`
}

// Extract reads the version out of a `version = "<value>"` TOML document.
func Extract(r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read version file: %w", err)
	}

	var doc versionDoc
	if err := toml.Unmarshal(raw, &doc); err == nil && doc.Version != "" {
		return doc.Version, nil
	}

	// pyproject-style files may not be valid TOML for our struct; the pattern still holds
	if m := versionPattern.FindSubmatch(raw); m != nil {
		return string(m[1]), nil
	}
	return "", fmt.Errorf("no version found")
}

// Version is the embedded jhack version.
func Version() string {
	v, err := Extract(strings.NewReader(versionFile))
	if err != nil {
		return "unknown"
	}
	return v
}
