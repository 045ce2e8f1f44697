package main

import (
	"io"
	"strings"
	"testing"
)

func TestResetRefusesWithoutConfirmation(t *testing.T) {
	cmd := resetCmd()
	cmd.SetArgs(nil)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Fatalf("err = %v, want refusal mentioning --yes", err)
	}
}

func TestResetFlags(t *testing.T) {
	cmd := resetCmd()
	keep := cmd.Flags().Lookup("keep-preferences")
	if keep == nil || keep.DefValue != "true" {
		t.Errorf("keep-preferences flag = %+v, want default true", keep)
	}
	if cmd.Flags().Lookup("yes") == nil {
		t.Error("missing --yes flag")
	}
	for _, table := range resetTables {
		if table == "preferences" {
			t.Error("preferences must only be truncated when keep-preferences is false")
		}
	}
}
