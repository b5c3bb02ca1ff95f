// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "strings"

// =============================================================================
// SLASH COMMAND PARSING
// =============================================================================

// command is a parsed REPL slash command.
type command struct {
	Name string
	Args []string
}

// commandAliases maps every accepted spelling to its canonical command name.
var commandAliases = map[string]string{
	"help":   "help",
	"h":      "help",
	"new":    "new",
	"n":      "new",
	"list":   "list",
	"l":      "list",
	"switch": "switch",
	"s":      "switch",
	"delete": "delete",
	"d":      "delete",
	"export": "export",
	"e":      "export",
	"quit":   "quit",
	"q":      "quit",
	"exit":   "quit",
}

// parseCommand parses a "/name args..." input line. The second return value
// is false when the input is not a slash command at all. Unknown commands
// come back with an empty Name so the caller can report them.
func parseCommand(input string) (command, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return command{}, false
	}

	fields := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(fields) == 0 {
		return command{}, true
	}

	name, known := commandAliases[strings.ToLower(fields[0])]
	if !known {
		return command{Args: fields[1:]}, true
	}
	return command{Name: name, Args: fields[1:]}, true
}
