// Package config loads service configuration once at startup. Components
// receive the values they need by injection and never read the
// environment themselves.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	// Embedded zone database so practice days resolve without system tzdata.
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"golang.org/x/mod/semver"
)

// Config holds all service configuration.
type Config struct {
	// DatabaseURL selects the Postgres store when set.
	DatabaseURL string
	// DBPath is the SQLite file used when DatabaseURL is empty.
	DBPath string

	Port           string
	AllowedOrigins []string

	// AdminIDs lists user IDs allowed to call admin routes.
	AdminIDs Allowlist

	// CompletionThreshold is the score at which an attempt marks an
	// exercise completed.
	CompletionThreshold int

	// Timezone names the location used to bucket practice days.
	Timezone string
	Location *time.Location

	// RateLimit requests are allowed per RateWindow per caller.
	// A RateLimit of 0 disables limiting.
	RateLimit  int
	RateWindow time.Duration

	// FetchRate caps per-user store reads per second while building the
	// leaderboard. 0 means unpaced.
	FetchRate float64

	// MinClientVersion rejects clients reporting an older semver.
	MinClientVersion string

	MetricsUser string
	MetricsPass string
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Port:                "3333",
		AllowedOrigins:      []string{"*"},
		AdminIDs:            ParseAllowlist(""),
		CompletionThreshold: 80,
		Timezone:            "Europe/Copenhagen",
		Location:            time.UTC,
		RateLimit:           300,
		RateWindow:          time.Minute,
	}
}

// Load reads the given dotenv files (".env" when none are given) and then
// builds a Config from the environment. Missing dotenv files are ignored.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from SPANSK_* environment variables, falling back
// to defaults for unset values.
func FromEnv() (Config, error) {
	cfg := Default()

	if v := os.Getenv("SPANSK_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	} else if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("SPANSK_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("SPANSK_PORT"); v != "" {
		cfg.Port = v
	} else if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("SPANSK_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	cfg.AdminIDs = ParseAllowlist(os.Getenv("SPANSK_ADMIN_IDS"))
	if v := os.Getenv("SPANSK_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	cfg.MinClientVersion = os.Getenv("SPANSK_MIN_CLIENT_VERSION")
	cfg.MetricsUser = os.Getenv("SPANSK_METRICS_USER")
	cfg.MetricsPass = os.Getenv("SPANSK_METRICS_PASS")

	var err error
	if cfg.CompletionThreshold, err = intEnv("SPANSK_COMPLETION_THRESHOLD", cfg.CompletionThreshold); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit, err = intEnv("SPANSK_RATE_LIMIT", cfg.RateLimit); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("SPANSK_RATE_WINDOW"); v != "" {
		d, perr := time.ParseDuration(v)
		if perr != nil {
			return Config{}, fmt.Errorf("SPANSK_RATE_WINDOW: %w", perr)
		}
		cfg.RateWindow = d
	}
	if v := os.Getenv("SPANSK_FETCH_RATE"); v != "" {
		f, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return Config{}, fmt.Errorf("SPANSK_FETCH_RATE: %w", perr)
		}
		cfg.FetchRate = f
	}

	if err := cfg.Resolve(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resolve validates the configuration and fills derived fields.
func (c *Config) Resolve() error {
	if err := c.Validate(); err != nil {
		return err
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	c.Location = loc
	return nil
}

// Validate checks that values are in range.
func (c Config) Validate() error {
	if c.CompletionThreshold < 0 || c.CompletionThreshold > 100 {
		return fmt.Errorf("completion threshold %d outside 0-100", c.CompletionThreshold)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if c.RateLimit > 0 && c.RateWindow <= 0 {
		return fmt.Errorf("rate window must be positive when rate limiting is enabled")
	}
	if c.FetchRate < 0 {
		return fmt.Errorf("fetch rate must not be negative")
	}
	if c.MinClientVersion != "" && !semver.IsValid(c.MinClientVersion) {
		return fmt.Errorf("min client version %q is not a semantic version (want vMAJOR.MINOR.PATCH)", c.MinClientVersion)
	}
	if c.Timezone == "" {
		return fmt.Errorf("timezone is required")
	}
	return nil
}

// UsePostgres reports whether the hosted Postgres store is configured.
func (c Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
