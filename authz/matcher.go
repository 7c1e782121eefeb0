package authz

import "strings"

// MatchPattern checks a "resource:action" pattern against a required
// permission. Either side of the pattern may be "*":
//
//   - "*:*"          matches everything
//   - "feedback:*"   matches "feedback:create", "feedback:delete", ...
//   - "*:read"       matches "project:read", "user:read", ...
//   - "user:list"    matches only "user:list"
func MatchPattern(pattern, required string) bool {
	if pattern == required || pattern == "*" || pattern == "*:*" {
		return true
	}

	patRes, patAct, patOK := strings.Cut(pattern, ":")
	reqRes, reqAct, reqOK := strings.Cut(required, ":")
	if !patOK || !reqOK {
		return false
	}
	return matchWildcard(patRes, reqRes) && matchWildcard(patAct, reqAct)
}

// MatchAny returns true if any of the patterns match the required permission.
func MatchAny(patterns []string, required string) bool {
	for _, p := range patterns {
		if MatchPattern(p, required) {
			return true
		}
	}
	return false
}

func matchWildcard(pattern, value string) bool {
	return pattern == "*" || pattern == value
}
