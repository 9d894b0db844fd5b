// apps/go-server/internal/config/config.go
//
// Process configuration.
// Responsibilities:
//   - Read server settings from the environment (.env is loaded by main).
//   - Overlay the optional YAML engine file (ENGINE_CONFIG) on the
//     scoring and puzzle defaults.
//   - Validate everything up front and report all problems at once.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/wordchain/apps/go-server/internal/puzzle"
	"github.com/robalobadob/wordchain/apps/go-server/internal/scoring"
)

// Config is everything the server and the puzzlegen CLI need at startup.
type Config struct {
	Port         string
	LogLevel     zerolog.Level
	DBPath       string
	DailySalt    string
	JWTSecret    string // empty: bearer identities are ignored
	ClientOrigin string
	EngineFile   string

	GenTimeout time.Duration
	GenRetries int
	SessionTTL time.Duration

	Engine Engine
}

// Engine is the tunable part, loaded from YAML.
type Engine struct {
	Scoring scoring.Config `yaml:"scoring"`
	Puzzle  puzzle.Options `yaml:"puzzle"`
}

// DefaultEngine returns the built-in tuning.
func DefaultEngine() Engine {
	return Engine{Scoring: scoring.DefaultConfig(), Puzzle: puzzle.DefaultOptions()}
}

// FromEnv reads the environment, then the engine file if one is named.
func FromEnv() (Config, error) {
	var errs []error

	lvl, err := zerolog.ParseLevel(strings.ToLower(getEnv("LOG_LEVEL", "info")))
	if err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	c := Config{
		Port:         getEnv("PORT", "5175"),
		LogLevel:     lvl,
		DBPath:       getEnv("DB_PATH", "./data/wordchain.db"),
		DailySalt:    getEnv("DAILY_SALT", "wordchain"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		EngineFile:   os.Getenv("ENGINE_CONFIG"),
		Engine:       DefaultEngine(),
	}
	c.GenTimeout, err = envDuration("DAILY_GEN_TIMEOUT", 10*time.Second)
	errs = append(errs, err)
	c.GenRetries, err = envInt("DAILY_GEN_RETRIES", 3)
	errs = append(errs, err)
	c.SessionTTL, err = envDuration("SESSION_TTL", 2*time.Hour)
	errs = append(errs, err)

	if c.EngineFile != "" {
		if c.Engine, err = LoadEngineFile(c.EngineFile); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

// Validate reports every invalid field, joined.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.GenTimeout <= 0 {
		errs = append(errs, fmt.Errorf("DAILY_GEN_TIMEOUT must be positive, got %s", c.GenTimeout))
	}
	if c.GenRetries <= 0 {
		errs = append(errs, fmt.Errorf("DAILY_GEN_RETRIES must be positive, got %d", c.GenRetries))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	errs = append(errs, c.Engine.Scoring.Validate(), c.Engine.Puzzle.Validate())
	return errors.Join(errs...)
}

// LoadEngineFile reads a YAML engine file over the defaults.
func LoadEngineFile(path string) (Engine, error) {
	f, err := os.Open(path)
	if err != nil {
		return Engine{}, fmt.Errorf("config: open engine file: %w", err)
	}
	defer f.Close()
	return LoadEngine(f)
}

// LoadEngine decodes YAML from r over the defaults. Unknown keys are errors
// so that typos do not silently fall back to defaults.
func LoadEngine(r io.Reader) (Engine, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Engine{}, fmt.Errorf("config: read engine: %w", err)
	}
	e := DefaultEngine()
	if len(bytes.TrimSpace(raw)) == 0 {
		return e, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&e); err != nil {
		return Engine{}, fmt.Errorf("config: decode engine: %w", err)
	}
	return e, nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func envDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}
