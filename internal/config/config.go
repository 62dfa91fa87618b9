package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Config represents the diffcritic configuration.
type Config struct {
	AgentCommand   string   `json:"agentCommand"`
	Model          string   `json:"model,omitempty"`
	TimeoutSeconds int      `json:"timeoutSeconds"`
	FailOn         string   `json:"failOn"`
	Formats        []string `json:"formats"`
	OutDir         string   `json:"outDir"`
	MaxIssues      int      `json:"maxIssues"`
	TokenLimit     int      `json:"tokenLimit"`
	Include        []string `json:"include,omitempty"`
	Exclude        []string `json:"exclude"`
	BaselinePath   string   `json:"baselinePath"`
	RulesFile      string   `json:"rulesFile,omitempty"`
	SessionCache   bool     `json:"sessionCache"`
	RedactSecrets  bool     `json:"redactSecrets"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		AgentCommand:   "claude",
		TimeoutSeconds: 180,
		FailOn:         "none",
		Formats:        []string{"json"},
		OutDir:         ".",
		MaxIssues:      25,
		TokenLimit:     20000,
		Exclude:        []string{"vendor/**", "**/*.gen.go", "**/dist/**"},
		BaselinePath:   ".diffcritic-baseline.json",
		SessionCache:   true,
		RedactSecrets:  true,
	}
}

// Dir returns the platform-appropriate config directory.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "diffcritic"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "diffcritic"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "diffcritic"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "diffcritic"), nil
	default:
		return filepath.Join(home, ".config", "diffcritic"), nil
	}
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns a zero Config and nil
// error if the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <-
// overrides. The overrides map comes from CLI flags; only non-zero flag
// values should be present.
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.AgentCommand != "" {
		dst.AgentCommand = src.AgentCommand
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.TimeoutSeconds > 0 {
		dst.TimeoutSeconds = src.TimeoutSeconds
	}
	if src.FailOn != "" {
		dst.FailOn = src.FailOn
	}
	if len(src.Formats) > 0 {
		dst.Formats = src.Formats
	}
	if src.OutDir != "" {
		dst.OutDir = src.OutDir
	}
	if src.MaxIssues > 0 {
		dst.MaxIssues = src.MaxIssues
	}
	if src.TokenLimit > 0 {
		dst.TokenLimit = src.TokenLimit
	}
	if len(src.Include) > 0 {
		dst.Include = src.Include
	}
	if len(src.Exclude) > 0 {
		dst.Exclude = src.Exclude
	}
	if src.BaselinePath != "" {
		dst.BaselinePath = src.BaselinePath
	}
	if src.RulesFile != "" {
		dst.RulesFile = src.RulesFile
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("DIFFCRITIC_AGENT"); v != "" {
		cfg.AgentCommand = v
	}
	if v := os.Getenv("DIFFCRITIC_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("DIFFCRITIC_FAIL_ON"); v != "" {
		cfg.FailOn = v
	}
	if v := os.Getenv("DIFFCRITIC_FORMATS"); v != "" {
		cfg.Formats = splitComma(v)
	}
	if v := os.Getenv("DIFFCRITIC_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("DIFFCRITIC_MAX_ISSUES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxIssues = n
		}
	}
	if v := os.Getenv("DIFFCRITIC_BASELINE"); v != "" {
		cfg.BaselinePath = v
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v := overrides["agentCommand"]; v != "" {
		cfg.AgentCommand = v
	}
	if v := overrides["model"]; v != "" {
		cfg.Model = v
	}
	if v := overrides["failOn"]; v != "" {
		cfg.FailOn = v
	}
	if v := overrides["formats"]; v != "" {
		cfg.Formats = splitComma(v)
	}
	if v := overrides["outDir"]; v != "" {
		cfg.OutDir = v
	}
	if v := overrides["timeoutSeconds"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
		}
	}
	if v := overrides["maxIssues"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxIssues = n
		}
	}
	if v := overrides["tokenLimit"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TokenLimit = n
		}
	}
	if v := overrides["baselinePath"]; v != "" {
		cfg.BaselinePath = v
	}
	if v := overrides["rulesFile"]; v != "" {
		cfg.RulesFile = v
	}
}

// SetField sets a single config field by key name. Returns an error for
// unknown keys so typos surface immediately.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "agentCommand":
		cfg.AgentCommand = value
	case "model":
		cfg.Model = value
	case "failOn":
		cfg.FailOn = value
	case "formats":
		cfg.Formats = splitComma(value)
	case "outDir":
		cfg.OutDir = value
	case "timeoutSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeoutSeconds must be an integer: %w", err)
		}
		cfg.TimeoutSeconds = n
	case "maxIssues":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxIssues must be an integer: %w", err)
		}
		cfg.MaxIssues = n
	case "tokenLimit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("tokenLimit must be an integer: %w", err)
		}
		cfg.TokenLimit = n
	case "baselinePath":
		cfg.BaselinePath = value
	case "rulesFile":
		cfg.RulesFile = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func splitComma(s string) []string {
	var result []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
