// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"reflect"
	"strings"
	"testing"

	"github.com/jeranaias/seekr-tui/internal/model"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    command
		isSlash bool
	}{
		{"not a command", "largest moon of saturn?", command{}, false},
		{"help", "/help", command{Name: "help"}, true},
		{"help alias", "/h", command{Name: "help"}, true},
		{"switch with arg", "/switch 2", command{Name: "switch", Args: []string{"2"}}, true},
		{"switch alias", "/s 2", command{Name: "switch", Args: []string{"2"}}, true},
		{"exit maps to quit", "/exit", command{Name: "quit"}, true},
		{"case insensitive", "/LIST", command{Name: "list"}, true},
		{"whitespace trimmed", "  /new  ", command{Name: "new"}, true},
		{"unknown keeps args", "/frobnicate now", command{Args: []string{"now"}}, true},
		{"bare slash", "/", command{}, true},
		{"export json", "/export json", command{Name: "export", Args: []string{"json"}}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, isSlash := parseCommand(tc.input)
			if isSlash != tc.isSlash {
				t.Fatalf("parseCommand(%q) slash = %v, want %v", tc.input, isSlash, tc.isSlash)
			}
			if got.Name != tc.want.Name {
				t.Errorf("Name = %q, want %q", got.Name, tc.want.Name)
			}
			if len(got.Args) != 0 || len(tc.want.Args) != 0 {
				if !reflect.DeepEqual(got.Args, tc.want.Args) {
					t.Errorf("Args = %v, want %v", got.Args, tc.want.Args)
				}
			}
		})
	}
}

func TestFormatSources(t *testing.T) {
	out := formatSources([]model.Source{
		{Position: 1, Title: "Titan", Link: "https://en.wikipedia.org/wiki/Titan", Source: "Wikipedia"},
		{Position: 2, Title: "NASA Science"},
	})

	for _, want := range []string{"Sources:", "[1]", "Titan", "(Wikipedia)", "https://en.wikipedia.org/wiki/Titan", "[2]", "NASA Science"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatSources output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "()") {
		t.Error("empty source name should be omitted")
	}
}

func TestFormatAnswerPlainWhenPiped(t *testing.T) {
	// Tests never run on a TTY, so the plain branch is the one exercised.
	msg := model.Message{
		Role:    model.RoleAssistant,
		Content: "Titan is the largest moon [1].",
		Status:  model.StatusComplete,
		Sources: []model.Source{{Position: 1, Title: "Titan", Source: "Wikipedia"}},
	}

	out := formatAnswer(msg)
	if !strings.Contains(out, "Titan is the largest moon [1].") {
		t.Errorf("answer text missing from output:\n%s", out)
	}
	if !strings.Contains(out, "Sources:") {
		t.Errorf("source list missing from output:\n%s", out)
	}
}
