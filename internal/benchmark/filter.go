package benchmark

import "strings"

// Filter selects benchmarks by name. Pattern is a glob where '*' matches
// any run of characters, anchored at both ends. Substring is a plain
// case-sensitive substring. When both are set Pattern wins.
type Filter struct {
	Pattern   string
	Substring string
}

// IsZero reports whether the filter lets every name through.
func (f Filter) IsZero() bool {
	return f.Pattern == "" && f.Substring == ""
}

// Match reports whether name passes the filter.
func (f Filter) Match(name string) bool {
	switch {
	case f.Pattern != "":
		return MatchGlob(f.Pattern, name)
	case f.Substring != "":
		return strings.Contains(name, f.Substring)
	default:
		return true
	}
}

// MatchAny reports whether any of names passes the filter.
func (f Filter) MatchAny(names ...string) bool {
	for _, n := range names {
		if f.Match(n) {
			return true
		}
	}
	return false
}

func (f Filter) String() string {
	switch {
	case f.Pattern != "":
		return "pattern " + f.Pattern
	case f.Substring != "":
		return "substring " + f.Substring
	default:
		return "none"
	}
}

// MatchGlob matches name against pattern, where '*' is the only wildcard.
func MatchGlob(pattern, name string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == name
	}

	first, last := parts[0], parts[len(parts)-1]
	if !strings.HasPrefix(name, first) {
		return false
	}
	rest := name[len(first):]
	if len(rest) < len(last) || !strings.HasSuffix(rest, last) {
		return false
	}
	rest = rest[:len(rest)-len(last)]

	// Leftmost matching of the inner literals is enough with '*' as the only wildcard.
	for _, p := range parts[1 : len(parts)-1] {
		i := strings.Index(rest, p)
		if i < 0 {
			return false
		}
		rest = rest[i+len(p):]
	}
	return true
}
