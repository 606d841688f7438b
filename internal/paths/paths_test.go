package paths

import (
	"path/filepath"
	"testing"
)

func TestConfigFile_HonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := ConfigFile()
	if err != nil {
		t.Fatalf("ConfigFile: %v", err)
	}
	want := filepath.Join(dir, "proxysmith", "config.yaml")
	if got != want {
		t.Fatalf("got=%q, want=%q", got, want)
	}

	created, err := EnsureConfigDir()
	if err != nil || created != filepath.Dir(want) {
		t.Fatalf("EnsureConfigDir=%q err=%v", created, err)
	}
}
