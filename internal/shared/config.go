package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Import      ImportConfig      `toml:"import"`
	Enrich      EnrichConfig      `toml:"enrich"`
	Suggest     SuggestConfig     `toml:"suggest"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Steam SteamConfig `toml:"steam"`
	IGDB  IGDBConfig  `toml:"igdb"`
}

// SteamConfig contains Steam Web API credentials and the storefront country used for prices.
type SteamConfig struct {
	APIKey  string `toml:"api_key"`
	SteamID string `toml:"steam_id"`
	Country string `toml:"country"`
}

// IGDBConfig contains Twitch application credentials for the IGDB API.
type IGDBConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ImportConfig controls reconciliation behavior.
type ImportConfig struct {
	ReuseIdentities bool   `toml:"reuse_identities"`
	MappingFile     string `toml:"mapping_file"`
}

// EnrichConfig bounds concurrent metadata lookups.
type EnrichConfig struct {
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"`
}

// SuggestConfig holds the default suggestion weights.
type SuggestConfig struct {
	BacklogBoost   float64 `toml:"backlog_boost"`
	ValueWeight    float64 `toml:"value_weight"`
	ScoreWeight    float64 `toml:"score_weight"`
	DurationWeight float64 `toml:"duration_weight"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads the given dotenv files (default ".env") into the process environment.
//
// Missing files are not an error; variables already set are left untouched.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides secrets and the database path from environment variables.
func (c *Config) ApplyEnv() {
	overrides := map[string]*string{
		"STEAM_API_KEY":      &c.Credentials.Steam.APIKey,
		"STEAM_ID":           &c.Credentials.Steam.SteamID,
		"IGDB_CLIENT_ID":     &c.Credentials.IGDB.ClientID,
		"IGDB_CLIENT_SECRET": &c.Credentials.IGDB.ClientSecret,
		"GAMETRACKER_DB":     &c.Database.Path,
	}
	for key, target := range overrides {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*target = v
		}
	}
}

// HasSteamKey reports whether a usable Steam Web API key is configured.
func (c *Config) HasSteamKey() bool {
	key := c.Credentials.Steam.APIKey
	return key != "" && key != "your_steam_api_key"
}

// HasIGDB reports whether usable IGDB credentials are configured.
func (c *Config) HasIGDB() bool {
	igdb := c.Credentials.IGDB
	return igdb.ClientID != "" && igdb.ClientSecret != "" &&
		igdb.ClientID != "your_twitch_client_id"
}
