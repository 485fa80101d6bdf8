package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./gametracker.db" {
			t.Errorf("expected database path ./gametracker.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if !config.Import.ReuseIdentities {
			t.Error("expected reuse_identities to default to true")
		}

		if config.Credentials.Steam.Country != "tr" {
			t.Errorf("expected steam country tr, got %s", config.Credentials.Steam.Country)
		}

		if config.Suggest.BacklogBoost != 1.0 {
			t.Errorf("expected backlog boost 1.0, got %v", config.Suggest.BacklogBoost)
		}

		if config.HasSteamKey() {
			t.Error("placeholder steam key should not count as configured")
		}

		if config.HasIGDB() {
			t.Error("placeholder IGDB credentials should not count as configured")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[import]
reuse_identities = false

[credentials.steam]
api_key = "abc"
steam_id = "76561198000000000"

[enrich]
workers = 8
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Import.ReuseIdentities {
			t.Error("expected reuse_identities false")
		}

		if config.Enrich.Workers != 8 {
			t.Errorf("expected 8 workers, got %d", config.Enrich.Workers)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected unset sections to keep defaults, got port %d", config.Server.Port)
		}

		if !config.HasSteamKey() {
			t.Error("expected steam key to be configured")
		}
	})

	t.Run("LoadConfig Invalid", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[database\npath="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Fatal("expected parse error")
		}
	})

	t.Run("LoadEnv And ApplyEnv", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte("IGDB_CLIENT_ID=from-dotenv\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Setenv("IGDB_CLIENT_ID", "")
		os.Unsetenv("IGDB_CLIENT_ID")
		t.Setenv("STEAM_API_KEY", "from-env")

		if err := LoadEnv(envPath, filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Fatalf("failed to load env: %v", err)
		}

		config := DefaultConfig()
		config.ApplyEnv()

		if config.Credentials.Steam.APIKey != "from-env" {
			t.Errorf("expected steam key from env, got %s", config.Credentials.Steam.APIKey)
		}
		if config.Credentials.IGDB.ClientID != "from-dotenv" {
			t.Errorf("expected IGDB client id from dotenv, got %s", config.Credentials.IGDB.ClientID)
		}
	})
}
