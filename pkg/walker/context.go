package walker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// groupMarker in a directory name makes its final character the group label.
const groupMarker = "Group"

// pairSeparator splits series directory names such as "Maru vs. Clem".
// The wildcards take one character on each side of "vs.".
var pairSeparator = regexp.MustCompile(`.vs[.].`)

// Context is what a node inherits from the directories above it.
// It is a value: Derive returns a new Context and never alters the receiver.
type Context struct {
	// Group is the group label, empty when no ancestor named one.
	Group string
	// PlayerNames is the expected player pair, nil when no ancestor named one.
	PlayerNames []string
}

// Derive returns the context for a child named name.
func (c Context) Derive(name string) Context {
	next := c

	if strings.Contains(name, groupMarker) {
		last, _ := utf8.DecodeLastRuneInString(name)
		next.Group = string(last)
	}

	if names := SplitPlayers(name); names != nil {
		next.PlayerNames = names
	}

	return next
}

// HasPlayers reports whether an expected player pair is known.
func (c Context) HasPlayers() bool {
	return c.PlayerNames != nil
}

// SplitPlayers splits a series name into player names. It returns nil when
// name has no separator.
func SplitPlayers(name string) []string {
	parts := pairSeparator.Split(name, -1)
	if len(parts) < 2 {
		return nil
	}

	return parts
}
