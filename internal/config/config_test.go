package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Default()
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("Load(\"\") = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadOverridesOnlySpecifiedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matchrecap.toml")
	contents := `
match_threshold = 0.55
map_names = ["聖心病院"]
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MatchThreshold != 0.55 {
		t.Errorf("MatchThreshold = %v, want 0.55", cfg.MatchThreshold)
	}
	if len(cfg.MapNames) != 1 || cfg.MapNames[0] != "聖心病院" {
		t.Errorf("MapNames = %v, want [聖心病院]", cfg.MapNames)
	}
	if cfg.OCRTimeoutSeconds != Default().OCRTimeoutSeconds {
		t.Errorf("OCRTimeoutSeconds = %d, want unchanged default %d", cfg.OCRTimeoutSeconds, Default().OCRTimeoutSeconds)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load("/nonexistent/path/matchrecap.toml"); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
