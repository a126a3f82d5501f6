// Package config loads runtime settings for the commands. Values come from
// the process environment, optionally seeded from a .env file in the working
// directory. The artist alias table may be extended from a TOML file.
package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"Spotify-Wrapper-Go/pkg/logging"
	"Spotify-Wrapper-Go/pkg/spotify"
)

// ErrNoCredentials is returned by Validate when the Spotify client id or
// secret is missing.
var ErrNoCredentials = errors.New("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET must be set")

// Config holds everything the commands need to build a catalog client.
type Config struct {
	ClientID     string
	ClientSecret string
	DatabasePath string
	Addr         string
	AliasesFile  string
	Log          logging.Config
}

// Load reads .env (if present) and then the environment. Variables already
// set in the environment win over .env entries.
func Load() Config {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	return Config{
		ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		DatabasePath: getEnv("DATABASE_PATH", "catalog.db"),
		Addr:         getEnv("ADDR", ":4000"),
		AliasesFile:  os.Getenv("ALIASES_FILE"),
		Log: logging.Config{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "text"),
			File:       os.Getenv("LOG_FILE"),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE", 28),
		},
	}
}

// Validate reports missing required settings.
func (c Config) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return ErrNoCredentials
	}
	return nil
}

// Aliases returns the built-in alias table merged with the entries of
// AliasesFile, when one is configured.
func (c Config) Aliases() (spotify.Aliases, error) {
	aliases := spotify.DefaultAliases()
	if c.AliasesFile == "" {
		return aliases, nil
	}
	extra, err := spotify.LoadAliases(c.AliasesFile)
	if err != nil {
		return nil, err
	}
	return aliases.Merge(extra), nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
