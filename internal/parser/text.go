package parser

import "strings"

// isBareURL reports whether content is nothing but a single link, which
// classifies the whole message as a link message.
func isBareURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	return !strings.ContainsAny(s, " \t\n")
}

// containsURL reports whether content embeds a link anywhere. Used for the
// hasLink flag, which is independent of message type.
func containsURL(s string) bool {
	return strings.Contains(s, "http://") ||
		strings.Contains(s, "https://") ||
		strings.Contains(s, "www.")
}
