// Package config reads settings from the environment, after an optional .env file.
//
// Defaults can be overridden via environment variables:
//
//	ADDR                    listen host (default: empty, all interfaces)
//	PORT                    listen port (default: 8081)
//	HEALTH_API_BASE         remote backend (default: http://localhost:8080)
//	PUBLIC_ORIGIN           origin used in invite links (default: http://localhost:<PORT>)
//	API_TIMEOUT             per-request timeout (default: 8s)
//	PROFILE_CACHE_TTL       profile cache lifetime (default: 5m, 0 disables)
//	BATTLE_DAMAGE           damage per lost property (default: 40)
//	BATTLE_STEP_DELAY       pause between attacks (default: 2s)
//	BATTLE_RANDOM_MESSAGES  pick battle lines at random (default: true)
//	BATTLE_CATALOG          YAML file with battle lines (optional)
//	SESSION_COOKIE          identifier cookie name (default: health_duel_uid)
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pefman/health-duel/internal/api"
	"github.com/pefman/health-duel/internal/battle"
	"github.com/pefman/health-duel/internal/session"
)

type Config struct {
	Addr          string
	APIBase       string
	PublicOrigin  string
	APITimeout    time.Duration
	CacheTTL      time.Duration
	Battle        battle.Config
	CatalogPath   string
	SessionCookie string
}

// Load reads .env files when present and then the process environment.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
		slog.Info("config: loaded environment file", "file", f)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (Config, error) {
	port := getenv("PORT", "8081")
	cfg := Config{
		Addr:          getenv("ADDR", "") + ":" + port,
		APIBase:       getenv("HEALTH_API_BASE", "http://localhost:8080"),
		PublicOrigin:  strings.TrimRight(getenv("PUBLIC_ORIGIN", "http://localhost:"+port), "/"),
		CatalogPath:   getenv("BATTLE_CATALOG", ""),
		SessionCookie: getenv("SESSION_COOKIE", session.DefaultCookieName),
	}
	var err error
	if cfg.APITimeout, err = durationEnv("API_TIMEOUT", api.DefaultTimeout); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = durationEnv("PROFILE_CACHE_TTL", api.DefaultCacheTTL); err != nil {
		return Config{}, err
	}
	b := battle.DefaultConfig()
	if b.Damage, err = intEnv("BATTLE_DAMAGE", b.Damage); err != nil {
		return Config{}, err
	}
	if b.Damage <= 0 || b.Damage > battle.MaxHealth {
		return Config{}, fmt.Errorf("BATTLE_DAMAGE must be between 1 and %d, got %d", battle.MaxHealth, b.Damage)
	}
	if b.StepDelay, err = durationEnv("BATTLE_STEP_DELAY", b.StepDelay); err != nil {
		return Config{}, err
	}
	if b.RandomMessages, err = boolEnv("BATTLE_RANDOM_MESSAGES", b.RandomMessages); err != nil {
		return Config{}, err
	}
	cfg.Battle = b
	return cfg, nil
}

// Catalog returns the configured battle lines, or the built-in ones.
func (c Config) Catalog() (*battle.Catalog, error) {
	if c.CatalogPath == "" {
		return battle.DefaultCatalog(), nil
	}
	return battle.LoadCatalog(c.CatalogPath)
}

func (c Config) APIConfig() api.Config {
	return api.Config{BaseURL: c.APIBase, Timeout: c.APITimeout, CacheTTL: c.CacheTTL}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func durationEnv(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// bare numbers are milliseconds, as in the old pages
		ms, aerr := strconv.Atoi(v)
		if aerr != nil {
			return 0, fmt.Errorf("%s: %w", k, err)
		}
		d = time.Duration(ms) * time.Millisecond
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %s", k, v)
	}
	return d, nil
}

func intEnv(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func boolEnv(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}
