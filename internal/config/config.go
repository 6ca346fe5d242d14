package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/retroverse-studios/reality-reigns/internal/card"
)

const appName = "reality-reigns"

// Config represents the application configuration
type Config struct {
	DefaultReality string          `toml:"default_reality"`
	LogLevel       string          `toml:"log_level"`
	LogEncoding    string          `toml:"log_encoding"`
	MaxSteps       int             `toml:"max_steps"`
	Baseline       BaselineConfig  `toml:"baseline"`
	Generator      GeneratorConfig `toml:"generator"`
	Catalog        CatalogConfig   `toml:"catalog"`
}

// BaselineConfig holds the stat values a playthrough starts with
type BaselineConfig struct {
	Power     int `toml:"power"`
	Wealth    int `toml:"wealth"`
	People    int `toml:"people"`
	Knowledge int `toml:"knowledge"`
}

// GeneratorConfig configures the deck generator backend
type GeneratorConfig struct {
	Backend  string   `toml:"backend"`
	Model    string   `toml:"model"`
	BaseURL  string   `toml:"base_url"`
	Timeout  Duration `toml:"timeout"`
	DeckSize int      `toml:"deck_size"`

	// Read from the environment only, never written to disk
	APIKey string `toml:"-"`
}

// CatalogConfig configures the community store client
type CatalogConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

// Duration wraps time.Duration so it reads and writes as "30s" in TOML
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// envOverrides are applied on top of the config file
type envOverrides struct {
	APIKey           string `envconfig:"API_KEY"`
	GeneratorBackend string `envconfig:"GENERATOR_BACKEND"`
	GeneratorModel   string `envconfig:"GENERATOR_MODEL"`
	GeneratorBaseURL string `envconfig:"GENERATOR_BASE_URL"`
	CatalogURL       string `envconfig:"CATALOG_URL"`
	LogLevel         string `envconfig:"LOG_LEVEL"`
}

// Default returns the configuration written on first run
func Default() *Config {
	return &Config{
		DefaultReality: "cyberpunk",
		LogLevel:       "warn",
		LogEncoding:    "console",
		MaxSteps:       0,
		Baseline:       BaselineConfig{Power: 50, Wealth: 50, People: 50, Knowledge: 50},
		Generator: GeneratorConfig{
			Backend:  "openai",
			Model:    "gpt-4o-mini",
			BaseURL:  "https://api.openai.com/v1",
			Timeout:  Duration{2 * time.Minute},
			DeckSize: 20,
		},
		Catalog: CatalogConfig{
			BaseURL: "https://store.reality-reigns.example/api/v1",
			Timeout: Duration{15 * time.Second},
		},
	}
}

// Stats converts the baseline to engine stats
func (b BaselineConfig) Stats() card.Stats {
	return card.Stats{b.Power, b.Wealth, b.People, b.Knowledge}
}

// Validate checks values the rest of the program relies on
func (c *Config) Validate() error {
	for _, stat := range card.AllStats {
		v := c.Baseline.Stats()[stat]
		if v <= card.MinStatValue || v >= card.MaxStatValue {
			return fmt.Errorf("baseline %s must be between %d and %d exclusive, got %d",
				strings.ToLower(stat.String()), card.MinStatValue, card.MaxStatValue, v)
		}
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative")
	}
	if c.Generator.DeckSize <= 0 {
		return fmt.Errorf("generator.deck_size must be positive")
	}
	return nil
}

// GetXDGDataHome returns XDG_DATA_HOME or default path
func GetXDGDataHome() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return xdgData
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".local", "share")
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetCacheDir returns XDG_CACHE_HOME/reality-reigns or default path
func GetCacheDir() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, appName)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".cache", appName)
}

// GetDeckLibraryPath returns the path to the deck library
func GetDeckLibraryPath() string {
	return filepath.Join(GetXDGDataHome(), appName, "decks")
}

// GetRealitiesPath returns the directory holding user reality files
func GetRealitiesPath() string {
	return filepath.Join(GetXDGConfigHome(), appName, "realities")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), appName, "config.toml")
}

// LoadConfig loads the config file, creating it with defaults when missing,
// then applies REIGNS_* environment overrides
func LoadConfig() (*Config, error) {
	config, err := loadFile()
	if err != nil {
		return nil, err
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", GetConfigFilePath(), err)
	}
	return config, nil
}

// loadFile reads the config file without environment overrides, so it can be
// written back unchanged
func loadFile() (*Config, error) {
	configPath := GetConfigFilePath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig()
	}

	config := Default()
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}
	return config, nil
}

func applyEnv(config *Config) error {
	var env envOverrides
	if err := envconfig.Process("REIGNS", &env); err != nil {
		return fmt.Errorf("error reading environment: %w", err)
	}

	config.Generator.APIKey = env.APIKey
	if env.GeneratorBackend != "" {
		config.Generator.Backend = env.GeneratorBackend
	}
	if env.GeneratorModel != "" {
		config.Generator.Model = env.GeneratorModel
	}
	if env.GeneratorBaseURL != "" {
		config.Generator.BaseURL = env.GeneratorBaseURL
	}
	if env.CatalogURL != "" {
		config.Catalog.BaseURL = env.CatalogURL
	}
	if env.LogLevel != "" {
		config.LogLevel = env.LogLevel
	}
	return nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig() (*Config, error) {
	config := Default()
	if err := SaveConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes the config file
func SaveConfig(config *Config) error {
	configPath := GetConfigFilePath()

	// Ensure the config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	return nil
}

// GetDeckPath resolves a deck name to a file, either in the deck library or as a path
func GetDeckPath(deckName string) (string, error) {
	// First, try to find the deck in the deck library
	libraryPath := GetDeckLibraryPath()
	for _, candidate := range []string{deckName, deckName + ".json"} {
		deckPath := filepath.Join(libraryPath, candidate)
		if info, err := os.Stat(deckPath); err == nil && !info.IsDir() {
			return deckPath, nil
		}
	}

	// If not found in the library, treat as a relative path
	if _, err := os.Stat(deckName); err == nil {
		return deckName, nil
	}

	return "", fmt.Errorf("deck not found: %s", deckName)
}

// LibraryDeckPath returns where a deck named name lives in the library
func LibraryDeckPath(name string) string {
	return filepath.Join(GetDeckLibraryPath(), Slug(name)+".json")
}

// Slug turns a display name into a file-safe name
func Slug(name string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		case !dash && sb.Len() > 0:
			sb.WriteRune('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(sb.String(), "-")
	if slug == "" {
		return "untitled"
	}
	return slug
}

// SetDefaultReality sets the default reality in the config
func SetDefaultReality(realityID string) error {
	config, err := loadFile()
	if err != nil {
		return err
	}

	config.DefaultReality = realityID
	return SaveConfig(config)
}
