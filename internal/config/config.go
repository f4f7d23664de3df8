package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/vigarblock/texas-holdem-poker-server/internal/util"
	"gopkg.in/yaml.v2"
)

// Config provides configuration for the Texas Hold'em poker server
type Config struct {
	loaded         bool
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	Log            struct {
		Level             string `yaml:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	}
	Game struct {
		StartingChips    int `yaml:"startingChips" envconfig:"starting_chips"`
		MinBet           int `yaml:"minBet" envconfig:"min_bet"`
		MinBetMultiplier int `yaml:"minBetMultiplier" envconfig:"min_bet_multiplier"`

		// timeouts and delays are in seconds
		PlayerTimeout  int `yaml:"playerTimeout" envconfig:"player_timeout"`
		IdleTimeout    int `yaml:"idleTimeout" envconfig:"idle_timeout"`
		HandStartDelay int `yaml:"handStartDelay" envconfig:"hand_start_delay"`
	}
}

var config Config

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration. A missing config file is not an error;
// the defaults and the environment still apply.
func Load() error {
	config = DefaultConfig()

	configFile := util.Getenv("THP_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err == nil {
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := envconfig.Process("thp", &config); err != nil {
		return err
	}

	config.loaded = true
	return nil
}

// DefaultConfig returns the configuration before the file and the
// environment are applied
func DefaultConfig() Config {
	c := Config{
		PGDSN:          "postgres://postgres@localhost:5432/postgres?sslmode=disable",
		MigrationsPath: "./sql",
	}

	c.Log.Level = "info"
	c.Game.StartingChips = 1000
	c.Game.MinBet = 20
	c.Game.MinBetMultiplier = 2
	c.Game.PlayerTimeout = 30
	c.Game.IdleTimeout = 600
	c.Game.HandStartDelay = 5
	return c
}
