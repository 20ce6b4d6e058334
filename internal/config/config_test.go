package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	neg := -0.5
	half := 0.1
	tests := []struct {
		name   string
		mutate func(c *GameConfig)
	}{
		{name: "zero games", mutate: func(c *GameConfig) { c.GamesPerSet = 0 }},
		{name: "even best of", mutate: func(c *GameConfig) { c.BestOf = 2 }},
		{name: "negative best of", mutate: func(c *GameConfig) { c.BestOf = -3 }},
		{name: "unknown level", mutate: func(c *GameConfig) { c.Level = "god" }},
		{name: "negative difficulty", mutate: func(c *GameConfig) { c.Difficulty = &neg }},
		{name: "window closes before open", mutate: func(c *GameConfig) { c.Timing.WindowCloseMs = 100 }},
		{name: "one band only", mutate: func(c *GameConfig) { c.Timing.BandEdge = &half }},
		{name: "zero player speed", mutate: func(c *GameConfig) { c.PlayerSpeed = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	c, err := Parse([]byte(`{"games_per_set": 6, "best_of": 3, "timing": {"window_close_ms": 900}}`))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if c.GamesPerSet != 6 || c.BestOf != 3 {
		t.Fatalf("format = %d/%d, want 6/3", c.GamesPerSet, c.BestOf)
	}
	if c.Timing.WindowCloseMs != 900 {
		t.Fatalf("WindowCloseMs = %d, want 900", c.Timing.WindowCloseMs)
	}
	if c.Timing.WindowOpenMs != 200 || c.Level != "medium" {
		t.Fatalf("defaults lost: %+v", c)
	}
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(map[string]string{
		EnvGamesPerSet:   "6",
		EnvBestOf:        "5",
		EnvLevel:         "hard",
		EnvDifficulty:    "0.9",
		EnvReceiptSecret: "s3cret",
		"unrelated":      "x",
	})
	if err != nil {
		t.Fatalf("ApplyEnv() failed: %v", err)
	}
	if c.GamesPerSet != 6 || c.BestOf != 5 || c.Level != "hard" {
		t.Fatalf("ApplyEnv() = %+v", c)
	}
	if c.Difficulty == nil || *c.Difficulty != 0.9 {
		t.Fatalf("Difficulty = %v, want 0.9", c.Difficulty)
	}
	if c.ReceiptSecret != "s3cret" {
		t.Fatalf("ReceiptSecret = %q", c.ReceiptSecret)
	}
}

func TestApplyEnvRejectsGarbage(t *testing.T) {
	c := Default()
	if err := c.ApplyEnv(map[string]string{EnvBestOf: "three"}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("ApplyEnv() = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadGameConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game_config.json")
	if err := os.WriteFile(path, []byte(`{"games_per_set": 4, "level": "easy"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := LoadGameConfig(path); err != nil {
		t.Fatalf("LoadGameConfig() failed: %v", err)
	}
	got := GetGameConfig()
	if got.GamesPerSet != 4 || got.Level != "easy" {
		t.Fatalf("GetGameConfig() = %+v", got)
	}
	got.GamesPerSet = 99
	if GetGameConfig().GamesPerSet != 4 {
		t.Fatal("GetGameConfig() returned shared state")
	}
}

func TestReadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "tennis_best_of=3\ntennis_level=hard\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	t.Setenv(EnvLevel, "easy")

	env, err := ReadEnv(path)
	if err != nil {
		t.Fatalf("ReadEnv() error: %v", err)
	}
	if env[EnvBestOf] != "3" {
		t.Fatalf("%s = %q, want value from file", EnvBestOf, env[EnvBestOf])
	}
	if env[EnvLevel] != "easy" {
		t.Fatalf("%s = %q, want process env to win", EnvLevel, env[EnvLevel])
	}

	cfg := Default()
	if err := cfg.ApplyEnv(env); err != nil {
		t.Fatalf("ApplyEnv() error: %v", err)
	}
	if cfg.BestOf != 3 || cfg.Level != "easy" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestReadEnvMissingFile(t *testing.T) {
	if _, err := ReadEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("ReadEnv() error: %v, want none for a missing file", err)
	}
}
