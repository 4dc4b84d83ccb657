package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "boardhub dev") {
		t.Errorf("output = %q, want to contain %q", out.String(), "boardhub dev")
	}
}

func TestRootHasSubcommands(t *testing.T) {
	cmd := newRootCmd()
	want := []string{"serve", "migrate", "board", "move", "renorm", "version"}
	have := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		have[sub.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestConnectFromConfig_MissingFile(t *testing.T) {
	if _, _, err := connectFromConfig("does-not-exist.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
