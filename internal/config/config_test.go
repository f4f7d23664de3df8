package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstance(t *testing.T) {
	clear1 := setEnv("THP_CONFIG_FILE", "testdata/config.yaml")
	defer clear1()
	clear2 := setEnv("THP_GAME_MIN_BET", "50")
	defer clear2()

	a := assert.New(t)
	cfg := Instance()
	a.Equal("postgres://poker@db:5432/poker?sslmode=disable", cfg.PGDSN)
	a.Equal(2000, cfg.Game.StartingChips)
	a.Equal(50, cfg.Game.MinBet, "environment wins over the file")
	a.Equal(15, cfg.Game.PlayerTimeout)

	// ensure that it's only loaded once
	_ = os.Setenv("THP_GAME_MIN_BET", "75")
	// ensure we aren't using a pointer
	cfg.Game.MinBet = -1
	cfg = Instance()
	a.Equal(50, cfg.Game.MinBet)
}

func TestDefaults(t *testing.T) {
	clear := setEnv("THP_CONFIG_FILE", "testdata/does-not-exist.yaml")
	defer clear()

	a := assert.New(t)
	a.NoError(Load())
	cfg := Instance()
	a.Equal("./sql", cfg.MigrationsPath)
	a.Equal(1000, cfg.Game.StartingChips)
	a.Equal(20, cfg.Game.MinBet)
	a.Equal(2, cfg.Game.MinBetMultiplier)
	a.Equal(30, cfg.Game.PlayerTimeout)
	a.Equal(600, cfg.Game.IdleTimeout)
	a.Equal(5, cfg.Game.HandStartDelay)
	a.Equal("info", cfg.Log.Level)
}

func setEnv(key, val string) func() {
	orig := os.Getenv(key)
	_ = os.Setenv(key, val)
	return func() {
		if orig == "" {
			_ = os.Unsetenv(key)
		} else {
			_ = os.Setenv(key, orig)
		}
	}
}
