package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort        = "8080"
	defaultLogLevel    = "info"
	defaultPendingTTL  = "60s"
	defaultMaxPlayers  = 4
	defaultDifficulty  = "dice"
	defaultBoardSource = "static"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Questions struct {
		TTL string `yaml:"ttl"`
	} `yaml:"questions"`
	Game struct {
		PendingTTL string `yaml:"pending_ttl"`
		MaxPlayers int    `yaml:"max_players"`
		// Difficulty is "dice" (roll decides) or a fixed easy|medium|hard.
		Difficulty string `yaml:"difficulty"`
	} `yaml:"game"`
	Board struct {
		// Source is "static" (built-in classic board) or "postgres".
		Source string `yaml:"source"`
	} `yaml:"board"`
}

// Load reads YAML config from path and fills unset fields with defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default is the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = defaultPort
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Game.PendingTTL == "" {
		c.Game.PendingTTL = defaultPendingTTL
	}
	if c.Game.MaxPlayers == 0 {
		c.Game.MaxPlayers = defaultMaxPlayers
	}
	if c.Game.Difficulty == "" {
		c.Game.Difficulty = defaultDifficulty
	}
	if c.Board.Source == "" {
		c.Board.Source = defaultBoardSource
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
