package nuke

import (
	"fmt"
	"strings"
)

// Matcher reports whether a name is selected by a nuke pattern.
type Matcher func(name string) bool

// ParseGlob turns a pattern into a Matcher:
//
//	foo, foo*  prefix
//	*foo       suffix
//	*foo*      substring
//	!foo       exact
//
// An empty pattern matches everything.
func ParseGlob(pattern string) (Matcher, error) {
	if strings.Contains(pattern, "*") && strings.Contains(pattern, "!") {
		return nil, fmt.Errorf("combinations of ! and * not supported")
	}
	if strings.HasPrefix(pattern, "!") {
		exact := strings.TrimLeft(pattern, "!")
		if strings.Contains(exact, "!") {
			return nil, fmt.Errorf("! is only supported at the start of the name")
		}
		return func(s string) bool { return s == exact }, nil
	}
	if strings.Contains(pattern, "!") {
		return nil, fmt.Errorf("! is only supported at the start of the name")
	}

	core := strings.Trim(pattern, "*")
	if strings.Contains(core, "*") {
		return nil, fmt.Errorf("* is only supported at the start or end of the name")
	}
	switch {
	case strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*") && len(pattern) > 1:
		return func(s string) bool { return strings.Contains(s, core) }, nil
	case strings.HasPrefix(pattern, "*"):
		return func(s string) bool { return strings.HasSuffix(s, core) }, nil
	default:
		return func(s string) bool { return strings.HasPrefix(s, core) }, nil
	}
}
