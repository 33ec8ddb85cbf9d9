package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"

	"phylorank/internal/application"
	"phylorank/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDBPath(t *testing.T) {
	t.Setenv(envDB, "")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DBPath(); got != "/data/phylorank/placements.db" {
		t.Errorf("DBPath() = %q", got)
	}

	t.Setenv(envDB, "/tmp/runs.db")
	if got := DBPath(); got != "/tmp/runs.db" {
		t.Errorf("DBPath() with env = %q", got)
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv(envConfig, "")
	if got := ConfigPath(); got != DefaultConfigPath {
		t.Errorf("ConfigPath() = %q", got)
	}
	t.Setenv(envConfig, "/etc/phylorank.yaml")
	if got := ConfigPath(); got != "/etc/phylorank.yaml" {
		t.Errorf("ConfigPath() with env = %q", got)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(envDB, "")
	t.Setenv("XDG_DATA_HOME", "/data")

	path := writeConfig(t, `
store: /srv/placements.db
log_level: debug
decorate:
  min_children: 2
  skip_rd_refine: true
  fill_rank_gaps: true
`)

	got, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := Config{
		Store:    "/srv/placements.db",
		LogLevel: "debug",
		Decorate: Decorate{
			MinChildren:  2,
			MaxRDDiff:    domain.DefaultMaxRDDiff,
			SkipRDRefine: true,
			FillRankGaps: true,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	if lvl, _ := got.Level(); lvl != zapcore.DebugLevel {
		t.Errorf("Level() = %v, want debug", lvl)
	}
}

func TestLoad_EnvStoreWins(t *testing.T) {
	t.Setenv(envDB, "/env/placements.db")
	got, err := Load(writeConfig(t, "store: /srv/placements.db\n"), true)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Store != "/env/placements.db" {
		t.Errorf("Store = %q, want env value", got.Store)
	}
}

func TestLoad_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(envDB, "")

	got, err := Load(writeConfig(t, "store: ~/runs.db\ndecorate:\n  trusted_taxa: ~/trusted.txt\n"), true)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if want := filepath.Join(home, "runs.db"); got.Store != want {
		t.Errorf("Store = %q, want %q", got.Store, want)
	}
	if want := filepath.Join(home, "trusted.txt"); got.Decorate.TrustedTaxa != want {
		t.Errorf("TrustedTaxa = %q, want %q", got.Decorate.TrustedTaxa, want)
	}
}

func TestLoad_Missing(t *testing.T) {
	t.Setenv(envDB, "")
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	got, err := Load(missing, false)
	if err != nil {
		t.Fatalf("optional config: unexpected error %v", err)
	}
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Errorf("expected defaults (-want +got):\n%s", diff)
	}

	if _, err := Load(missing, true); err == nil {
		t.Error("required config: expected error")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative min children", "decorate:\n  min_children: -1\n"},
		{"negative min support", "decorate:\n  min_support: -5\n"},
		{"max rd diff above one", "decorate:\n  max_rd_diff: 1.5\n"},
		{"unknown log level", "log_level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), true)
			if !errors.Is(err, application.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	if _, err := Load(writeConfig(t, "decorate: [oops"), true); err == nil {
		t.Error("expected YAML parse error")
	}
}
