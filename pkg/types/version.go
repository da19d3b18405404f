package types

import (
	"fmt"
	"strconv"
	"strings"
)

// JujuVersion is a parsed `juju version` string like 3.4.2-genericlinux-amd64.
type JujuVersion struct {
	Parts []int
	Build string
}

func ParseJujuVersion(raw string) (JujuVersion, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return JujuVersion{}, fmt.Errorf("empty version string")
	}
	v, build, _ := strings.Cut(raw, "-")
	var parts []int
	for _, p := range strings.Split(v, ".") {
		n, err := strconv.Atoi(p)
		if err != nil {
			return JujuVersion{}, fmt.Errorf("invalid version %q: %w", raw, err)
		}
		parts = append(parts, n)
	}
	return JujuVersion{Parts: parts, Build: build}, nil
}

func (v JujuVersion) Major() int {
	if len(v.Parts) == 0 {
		return 0
	}
	return v.Parts[0]
}

// Compare returns -1, 0 or 1. Missing components count as zero.
func (v JujuVersion) Compare(other JujuVersion) int {
	n := max(len(v.Parts), len(other.Parts))
	for i := 0; i < n; i++ {
		a, b := 0, 0
		if i < len(v.Parts) {
			a = v.Parts[i]
		}
		if i < len(other.Parts) {
			b = other.Parts[i]
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

func (v JujuVersion) AtLeast(parts ...int) bool {
	return v.Compare(JujuVersion{Parts: parts}) >= 0
}

func (v JujuVersion) String() string {
	s := make([]string, len(v.Parts))
	for i, p := range v.Parts {
		s[i] = strconv.Itoa(p)
	}
	if v.Build != "" {
		return strings.Join(s, ".") + "-" + v.Build
	}
	return strings.Join(s, ".")
}
