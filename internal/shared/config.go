package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server     ServerConfig          `toml:"server"`
	Database   DatabaseConfig        `toml:"database"`
	Library    LibraryConfig         `toml:"library"`
	Users      map[string]UserConfig `toml:"users"`
	Scrobblers []ScrobblerConfig     `toml:"scrobblers"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	LogLevel    string   `toml:"log_level"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LibraryConfig points at the music files and playlists served by the catalog.
type LibraryConfig struct {
	MusicDir    string   `toml:"music_dir"`
	PlaylistDir string   `toml:"playlist_dir"`
	ArtNames    []string `toml:"art_names"`
	ScanWorkers int      `toml:"scan_workers"`
}

// UserConfig holds one account. Exactly one of Password or PasswordFile is expected.
type UserConfig struct {
	Password     string `toml:"password"`
	PasswordFile string `toml:"password_file"`
	Email        string `toml:"email"`
	Scrobble     bool   `toml:"scrobble"`
}

// ScrobblerConfig declares a named scrobble backend.
type ScrobblerConfig struct {
	Name      string  `toml:"name"`
	Kind      string  `toml:"kind"`
	URL       string  `toml:"url"`
	Token     string  `toml:"token"`
	RateLimit float64 `toml:"rate_limit"`
}

// Address returns the host:port pair the HTTP server listens on.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.Library.MusicDir = expandHome(config.Library.MusicDir)
	config.Library.PlaylistDir = expandHome(config.Library.PlaylistDir)

	if err := config.Validate(); err != nil {
		return nil, err
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

// Validate checks the fields the server cannot start without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	}

	for name, user := range c.Users {
		if name == "" {
			return fmt.Errorf("%w: empty user name", ErrInvalidConfig)
		}
		if user.Password == "" && user.PasswordFile == "" {
			return fmt.Errorf("%w: user %q needs password or password_file", ErrMissingCredentials, name)
		}
	}

	seen := make(map[string]bool, len(c.Scrobblers))
	for _, s := range c.Scrobblers {
		if s.Name == "" {
			return fmt.Errorf("%w: scrobbler without a name", ErrInvalidConfig)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate scrobbler %q", ErrInvalidConfig, s.Name)
		}
		seen[s.Name] = true
		if s.Kind == "webhook" && s.URL == "" {
			return fmt.Errorf("%w: scrobbler %q needs a url", ErrInvalidConfig, s.Name)
		}
	}

	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
