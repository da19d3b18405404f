package endpoints

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// LibInfo describes a charm library found under lib/charms.
type LibInfo struct {
	Owner    string
	Version  string
	LibName  string
	Revision string
}

func (l LibInfo) String() string {
	return l.Version + "." + l.Revision
}

// e.g. ./agents/unit-zinc-k8s-0/charm/lib/charms/loki_k8s/v0/loki_push_api.py:LIBPATCH = 12
var libPatchPattern = regexp.MustCompile(`.*/charms/(\w+)/v(\d+)/(\w+)\.py:LIBPATCH\s=\s(\d+)`)

// ParseLibInfo parses the output of grepping LIBPATCH across lib/.
func ParseLibInfo(out string) []LibInfo {
	var libs []LibInfo
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		m := libPatchPattern.FindStringSubmatch(line)
		if m == nil {
			log.Error().Msgf("unable to determine libinfo from lib path %s", line)
			continue
		}
		libs = append(libs, LibInfo{Owner: m[1], Version: m[2], LibName: m[3], Revision: m[4]})
	}
	return libs
}

func normalizeLib(name string) string {
	name, _, _ = strings.Cut(name, ".")
	return strings.ReplaceAll(strings.ToUpper(name), "-", "_")
}

// Implements guesses, by name, whether lib implements the interface.
func (l LibInfo) Implements(iface string) bool {
	return normalizeLib(l.LibName) == normalizeLib(iface)
}

// Implementations returns the libs that probably implement iface.
func Implementations(libs []LibInfo, iface string) []LibInfo {
	var out []LibInfo
	for _, lib := range libs {
		if lib.Implements(iface) {
			out = append(out, lib)
		}
	}
	return out
}

// SupportedVersions renders `v.rev|v.rev`, or a placeholder when nothing matched.
func SupportedVersions(impls []LibInfo) string {
	if len(impls) == 0 {
		return "<library not found>"
	}
	parts := make([]string, len(impls))
	for i, lib := range impls {
		parts[i] = lib.String()
	}
	return strings.Join(parts, "|")
}
