package cli

import (
	"context"
	"io"
	"slices"
	"testing"

	"github.com/charmbracelet/log"
)

func newTestCLI() *CLI {
	return New(io.Discard, log.InfoLevel)
}

func TestRootCommandSubcommands(t *testing.T) {
	root := newTestCLI().RootCommand()

	want := []string{
		"build", "enumerate", "layout", "render", "program",
		"explore", "serve", "runs", "cache", "completion",
	}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}

func TestRootCommandMetadata(t *testing.T) {
	root := newTestCLI().RootCommand()

	if root.Use != "chromatree" {
		t.Errorf("Use = %q, want chromatree", root.Use)
	}
	if !root.SilenceUsage {
		t.Error("usage spam on runtime errors should be silenced")
	}
}

func TestRootCommandAttachesLogger(t *testing.T) {
	c := newTestCLI()
	root := c.RootCommand()
	root.SetContext(context.Background())

	root.PersistentPreRun(root, nil)

	if got := loggerFromContext(root.Context()); got != c.Logger {
		t.Error("command context should carry the CLI logger")
	}
}

func TestSetLogLevel(t *testing.T) {
	c := newTestCLI()
	c.SetLogLevel(log.DebugLevel)
	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"Empty", "", []string{"svg"}, false},
		{"Single", "dot", []string{"dot"}, false},
		{"Multiple", "dot,svg,png", []string{"dot", "svg", "png"}, false},
		{"Spaces", "dot, json", []string{"dot", "json"}, false},
		{"Unknown", "bmp", nil, true},
		{"MixedUnknown", "svg,bmp", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFormats(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFormats(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
