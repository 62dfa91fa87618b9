package config

import (
	"os"
	"path/filepath"
	"testing"
)

// isolate points the config dir at a fresh temp directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.AgentCommand != "claude" {
		t.Errorf("AgentCommand = %q", cfg.AgentCommand)
	}
	if cfg.TimeoutSeconds != 180 {
		t.Errorf("TimeoutSeconds = %d", cfg.TimeoutSeconds)
	}
	if cfg.FailOn != "none" {
		t.Errorf("FailOn = %q", cfg.FailOn)
	}
	if len(cfg.Formats) != 1 || cfg.Formats[0] != "json" {
		t.Errorf("Formats = %v", cfg.Formats)
	}
	if !cfg.SessionCache || !cfg.RedactSecrets {
		t.Error("session cache and redaction should default on")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AgentCommand != "claude" || cfg.MaxIssues != 25 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadMergeOrder(t *testing.T) {
	dir := isolate(t)

	// File layer.
	fileCfg := Default()
	fileCfg.FailOn = "minor"
	fileCfg.MaxIssues = 10
	fileCfg.Model = "file-model"
	if err := Save(fileCfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "diffcritic", "config.json")); err != nil {
		t.Fatalf("config file not written where expected: %v", err)
	}

	// Env layer overrides the file.
	t.Setenv("DIFFCRITIC_FAIL_ON", "major")

	// Flag layer overrides everything.
	cfg, err := Load(map[string]string{"maxIssues": "5"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FailOn != "major" {
		t.Errorf("FailOn = %q, env should beat file", cfg.FailOn)
	}
	if cfg.MaxIssues != 5 {
		t.Errorf("MaxIssues = %d, flag should beat file", cfg.MaxIssues)
	}
	if cfg.Model != "file-model" {
		t.Errorf("Model = %q, untouched file values should survive", cfg.Model)
	}
}

func TestLoadEnvFormats(t *testing.T) {
	isolate(t)
	t.Setenv("DIFFCRITIC_FORMATS", "json, sarif ,markdown")
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"json", "sarif", "markdown"}
	if len(cfg.Formats) != len(want) {
		t.Fatalf("Formats = %v, want %v", cfg.Formats, want)
	}
	for i := range want {
		if cfg.Formats[i] != want[i] {
			t.Errorf("format %d = %q, want %q", i, cfg.Formats[i], want[i])
		}
	}
}

func TestLoadCorruptFile(t *testing.T) {
	dir := isolate(t)
	cfgDir := filepath.Join(dir, "diffcritic")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(nil); err == nil {
		t.Error("corrupt config file should be a hard error, not silently ignored")
	}
}

func TestSetField(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
		check   func(Config) bool
	}{
		{"agentCommand", "other", false, func(c Config) bool { return c.AgentCommand == "other" }},
		{"failOn", "critical", false, func(c Config) bool { return c.FailOn == "critical" }},
		{"formats", "json,sarif", false, func(c Config) bool { return len(c.Formats) == 2 }},
		{"maxIssues", "7", false, func(c Config) bool { return c.MaxIssues == 7 }},
		{"maxIssues", "seven", true, nil},
		{"timeoutSeconds", "60", false, func(c Config) bool { return c.TimeoutSeconds == 60 }},
		{"tokenLimit", "9000", false, func(c Config) bool { return c.TokenLimit == 9000 }},
		{"nonsense", "x", true, nil},
	}
	for _, tt := range tests {
		cfg := Default()
		err := SetField(&cfg, tt.key, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("SetField(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			continue
		}
		if tt.check != nil && !tt.check(cfg) {
			t.Errorf("SetField(%q, %q) did not apply", tt.key, tt.value)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	isolate(t)
	cfg := Default()
	cfg.Model = "some-model"
	cfg.Exclude = []string{"generated/**"}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.Model != "some-model" {
		t.Errorf("Model = %q", got.Model)
	}
	if len(got.Exclude) != 1 || got.Exclude[0] != "generated/**" {
		t.Errorf("Exclude = %v", got.Exclude)
	}
}
