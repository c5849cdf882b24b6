package search

import (
	"strings"
)

// ParseScopes reads a comma separated scope list. Unknown names are ignored,
// and an empty result means every scope.
func ParseScopes(values ...string) []Scope {
	var scopes []Scope
	seen := map[Scope]bool{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			s := Scope(strings.ToLower(strings.TrimSpace(part)))
			switch s {
			case ScopeFragment, ScopeNote, ScopeTag:
				if !seen[s] {
					seen[s] = true
					scopes = append(scopes, s)
				}
			}
		}
	}
	return scopes
}

// ParseMatchMode defaults to substring.
func ParseMatchMode(s string) MatchMode {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case MatchExact:
		return MatchExact
	case MatchPrefix:
		return MatchPrefix
	}
	return MatchSubstring
}

// ParseTagLogic defaults to AND.
func ParseTagLogic(s string) TagLogic {
	if strings.EqualFold(strings.TrimSpace(s), string(TagLogicOr)) {
		return TagLogicOr
	}
	return TagLogicAnd
}

// SplitList flattens repeated and comma separated values, dropping blanks.
func SplitList(values ...string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
