package tail

import (
	"regexp"
	"strconv"

	"github.com/canonical/jhack/pkg/types"
)

var (
	eventPattern = regexp.MustCompile(
		`^(\S+): (.+?) (\S+) unit\.(\S+?)\.juju-log Emitting Juju event (\S+)\.$`)
	relationEventPattern = regexp.MustCompile(
		`^(\S+): (.+?) (\S+) unit\.(\S+?)\.juju-log (\S+?):(\d+): Emitting Juju event (\S+)\.$`)
	uniterEventPattern = regexp.MustCompile(
		`^(\S+): (.+?) (\S+) juju\.worker\.uniter\.operation ran "(.+?)" hook \(via hook dispatching script: dispatch\)$`)
	deferredPattern = regexp.MustCompile(
		`^(\S+): (.+?) (\S+) unit\.(\S+?)\.juju-log Deferring <(\S+) via (\S+?)/on/(\S+?)\[(\d+)\]>\.$`)
	reemittedPattern = regexp.MustCompile(
		`^(\S+): (.+?) (\S+) unit\.(\S+?)\.juju-log Re-emitting <(\S+) via (\S+?)/on/(\S+?)\[(\d+)\]>\.$`)
)

type EventLogMsg struct {
	Pod       string
	Timestamp string
	Level     string
	Unit      string
	Event     string
}

type DeferredLogMsg struct {
	EventLogMsg
	EventClass string
	Charm      string
	N          int
}

func matchEmitted(line string) (*EventLogMsg, bool) {
	if m := eventPattern.FindStringSubmatch(line); m != nil {
		return &EventLogMsg{Pod: m[1], Timestamp: m[2], Level: m[3], Unit: m[4], Event: m[5]}, true
	}
	if m := relationEventPattern.FindStringSubmatch(line); m != nil {
		return &EventLogMsg{Pod: m[1], Timestamp: m[2], Level: m[3], Unit: m[4], Event: m[7]}, true
	}
	if m := uniterEventPattern.FindStringSubmatch(line); m != nil {
		unit, ok := types.UnitFromTag(m[1])
		if !ok {
			return nil, false
		}
		return &EventLogMsg{Pod: m[1], Timestamp: m[2], Level: m[3], Unit: unit, Event: m[4]}, true
	}
	return nil, false
}

func matchDeferral(pattern *regexp.Regexp, line string) (*DeferredLogMsg, bool) {
	m := pattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	n, _ := strconv.Atoi(m[8])
	return &DeferredLogMsg{
		EventLogMsg: EventLogMsg{Pod: m[1], Timestamp: m[2], Level: m[3], Unit: m[4], Event: m[7]},
		EventClass:  m[5],
		Charm:       m[6],
		N:           n,
	}, true
}

func matchDeferred(line string) (*DeferredLogMsg, bool) {
	return matchDeferral(deferredPattern, line)
}

func matchReemitted(line string) (*DeferredLogMsg, bool) {
	return matchDeferral(reemittedPattern, line)
}

// sameEvent treats `foo-relation-joined` and `foo_relation_joined` as the same event.
func sameEvent(a, b string) bool {
	if a == b {
		return true
	}
	if commonSuffixLen(a, b) == 0 {
		return false
	}
	return normalize(a) == normalize(b)
}

func normalize(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c == '-' {
			out[i] = '_'
		}
	}
	return string(out)
}

func commonSuffixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	return n
}
