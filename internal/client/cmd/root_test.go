package cmd

import (
	"bytes"
	"testing"
)

func withTempHome(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("USERPROFILE", dir)
}

func TestRoot_VersionAndKey(t *testing.T) {
	withTempHome(t)

	root := NewRootCmd("1.0.0", "2025-08-13")
	out := new(bytes.Buffer)
	root.SetOut(out)

	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if out.Len() == 0 {
		t.Fatalf("no version output")
	}

	out.Reset()
	root.SetArgs([]string{"key", "init"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	root.SetArgs([]string{"key", "status"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	// a second init must refuse to overwrite the key
	root.SetArgs([]string{"key", "init"})
	if err := root.Execute(); err == nil {
		t.Fatalf("second key init succeeded")
	}
}
