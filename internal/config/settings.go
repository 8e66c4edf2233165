package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/astrds.yaml
var defaultSettingsYAML []byte

// Settings holds host-level configuration: pacing, seeding, storage and the
// SSH listener. Gameplay rules are constants and are not configurable.
type Settings struct {
	FPS          int         `yaml:"fps"`
	Seed         int64       `yaml:"seed"`
	DBPath       string      `yaml:"db_path"`
	HighScoreKey string      `yaml:"high_score_key"`
	SSH          SSHSettings `yaml:"ssh"`
}

// SSHSettings configures the SSH front end.
type SSHSettings struct {
	Host        string        `yaml:"host"`
	Port        string        `yaml:"port"`
	HostKey     string        `yaml:"host_key"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// DefaultSettings returns the hardcoded defaults, used when even the
// embedded YAML cannot be parsed.
func DefaultSettings() Settings {
	return Settings{
		FPS:          DefaultFPS,
		DBPath:       "~/.astrds/scores.db",
		HighScoreKey: HighScoreKey,
		SSH: SSHSettings{
			Host:        "::",
			Port:        "2222",
			HostKey:     "~/.astrds/host_key",
			IdleTimeout: 30 * time.Minute,
		},
	}
}

// LoadSettings loads host settings.
// Search order: customPath -> ~/.astrds/config.yaml -> ./configs/astrds.yaml -> embedded default.
// Only an unreadable or malformed customPath is an error; the other
// locations are skipped silently when absent or invalid.
func LoadSettings(customPath string) (Settings, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Settings{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parseSettings(data)
		if err != nil {
			return Settings{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	if userPath := userConfigPath("config.yaml"); userPath != "" {
		if data, err := os.ReadFile(userPath); err == nil {
			if cfg, err := parseSettings(data); err == nil {
				return cfg, nil
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join("configs", "astrds.yaml")); err == nil {
		if cfg, err := parseSettings(data); err == nil {
			return cfg, nil
		}
	}

	cfg, err := parseSettings(defaultSettingsYAML)
	if err != nil {
		return DefaultSettings(), nil
	}
	return cfg, nil
}

// parseSettings decodes YAML over the defaults so omitted keys keep their
// default values, then normalizes the result.
func parseSettings(data []byte) (Settings, error) {
	cfg := DefaultSettings()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Settings{}, err
	}
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultFPS
	}
	if cfg.HighScoreKey == "" {
		cfg.HighScoreKey = HighScoreKey
	}
	return cfg, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// userConfigPath returns the path to a file in the user config directory,
// or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".astrds", filename)
}
