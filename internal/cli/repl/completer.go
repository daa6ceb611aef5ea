package repl

import (
	"slices"
	"strings"
)

// Completer matches command name prefixes.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over the given command names.
func NewCompleter(commands ...string) *Completer {
	c := &Completer{commands: slices.Clone(commands)}
	slices.Sort(c.commands)
	return c
}

// Complete returns the commands starting with prefix, sorted.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Resolve expands word to a full command name. An exact name always wins;
// otherwise the prefix must be unique. The candidates are returned when it
// is not.
func (c *Completer) Resolve(word string) (string, []string) {
	if slices.Contains(c.commands, word) {
		return word, nil
	}
	matches := c.Complete(word)
	if len(matches) == 1 {
		return matches[0], nil
	}
	return "", matches
}

// Commands returns the known command names, sorted.
func (c *Completer) Commands() []string {
	return slices.Clone(c.commands)
}
