package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lu-zhengda/wiper/internal/logging"
	"github.com/lu-zhengda/wiper/internal/scanner"
	"github.com/lu-zhengda/wiper/internal/utils"
)

// Config holds all wiper configuration.
type Config struct {
	// Ignore lists directory names the scanner never enters.
	Ignore      []string       `yaml:"ignore" json:"ignore"`
	Concurrency int            `yaml:"concurrency" json:"concurrency"`
	Exclude     []string       `yaml:"exclude" json:"exclude"`
	Storage     StorageConfig  `yaml:"storage" json:"storage"`
	History     HistoryConfig  `yaml:"history" json:"history"`
	Logging     logging.Config `yaml:"logging" json:"logging"`
	Monitor     MonitorConfig  `yaml:"monitor" json:"monitor"`
}

// StorageConfig locates the SQLite database holding watch roots and the
// file remembering the last scan of each root.
type StorageConfig struct {
	Path      string `yaml:"path" json:"path"`
	ScanCache string `yaml:"scan_cache" json:"scan_cache"`
}

// HistoryConfig selects where wipe records are kept.
type HistoryConfig struct {
	// Backend is "sqlite" (the storage database) or "json".
	Backend string `yaml:"backend" json:"backend"`
	// Path is the JSON ledger file, used only by the json backend.
	Path string `yaml:"path" json:"path"`
}

// MonitorConfig controls `wiper monitor`.
type MonitorConfig struct {
	Debounce string `yaml:"debounce" json:"debounce"`
}

// Default returns a Config with all default values populated.
func Default() *Config {
	dataDir := utils.DataDir()
	log := logging.DefaultConfig()
	log.FilePath = filepath.Join(dataDir, "wiper.log")
	return &Config{
		Ignore:      append([]string(nil), scanner.DefaultIgnore...),
		Concurrency: 4,
		Exclude:     []string{},
		Storage: StorageConfig{
			Path:      filepath.Join(dataDir, "wiper.db"),
			ScanCache: filepath.Join(dataDir, "last-scan.json"),
		},
		History: HistoryConfig{
			Backend: "sqlite",
			Path:    filepath.Join(dataDir, "history.json"),
		},
		Logging: log,
		Monitor: MonitorConfig{
			Debounce: "2s",
		},
	}
}

// DefaultPath returns ~/.config/wiper/config.yaml, honoring
// XDG_CONFIG_HOME.
func DefaultPath() string {
	return filepath.Join(utils.ConfigDir(), "config.yaml")
}

// Load loads config from the given path. If path is empty, it uses
// DefaultPath. If the file does not exist, it creates it with default
// values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	return LoadFrom(path)
}

// LoadFrom loads and parses config from the given path. Missing fields
// keep their default values. Paths may start with "~".
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	for _, p := range []*string{&cfg.Storage.Path, &cfg.Storage.ScanCache, &cfg.History.Path, &cfg.Logging.FilePath} {
		if *p == "" {
			continue
		}
		expanded, err := utils.ExpandPath(*p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %q: %w", *p, err)
		}
		*p = expanded
	}

	return cfg, nil
}

// Save marshals the config to YAML and writes it to the given path,
// creating parent directories as needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := utils.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate returns a warning for every setting that will be replaced by a
// fallback at runtime.
func (c *Config) Validate() []string {
	var warnings []string
	if c.Concurrency < 1 {
		warnings = append(warnings, fmt.Sprintf("concurrency %d is below 1; scanning sequentially", c.Concurrency))
	}
	if !logging.ValidLevel(c.Logging.Level) {
		warnings = append(warnings, fmt.Sprintf("unknown logging.level %q; using info", c.Logging.Level))
	}
	if !logging.ValidFormat(c.Logging.Format) {
		warnings = append(warnings, fmt.Sprintf("unknown logging.format %q; using text", c.Logging.Format))
	}
	switch c.History.Backend {
	case "sqlite", "json":
	default:
		warnings = append(warnings, fmt.Sprintf("unknown history.backend %q; using sqlite", c.History.Backend))
	}
	if _, err := time.ParseDuration(c.Monitor.Debounce); err != nil {
		warnings = append(warnings, fmt.Sprintf("invalid monitor.debounce %q; using 2s", c.Monitor.Debounce))
	}
	for _, pattern := range c.Exclude {
		if _, err := filepath.Match(strings.TrimSuffix(pattern, "/**"), ""); err != nil {
			warnings = append(warnings, fmt.Sprintf("invalid exclude pattern %q", pattern))
		}
	}
	return warnings
}

// ScanConcurrency returns Concurrency, or 1 when it is not positive.
func (c *Config) ScanConcurrency() int {
	if c.Concurrency < 1 {
		return 1
	}
	return c.Concurrency
}

// DebounceDuration parses Monitor.Debounce, falling back to two seconds.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.Monitor.Debounce))
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// IsExcluded checks if the given path matches any of the configured
// exclude glob patterns. Matching is done against the full path and
// against the base name. Patterns ending in "/**" are treated as
// directory prefix matches.
func (c *Config) IsExcluded(path string) bool {
	for _, pattern := range c.Exclude {
		if strings.HasSuffix(pattern, "/**") {
			prefix := strings.TrimSuffix(pattern, "/**")
			if strings.HasPrefix(path, prefix+"/") || path == prefix {
				return true
			}
			continue
		}

		if matched, _ := filepath.Match(pattern, path); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
			return true
		}
	}
	return false
}
