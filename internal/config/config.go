// Package config loads repledger settings from an optional CUE file,
// validated against an embedded schema that also supplies the defaults.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/repledger/internal/calendar"
	"github.com/roach88/repledger/internal/model"
)

//go:embed schema.cue
var schemaCUE string

// EnvDatabase overrides the database path from the environment.
const EnvDatabase = "REPLEDGER_DB"

// Config is the decoded configuration.
type Config struct {
	Database string      `json:"database"`
	Timezone string      `json:"timezone"`
	Log      LogConfig   `json:"log"`
	HTTP     HTTPConfig  `json:"http"`
	Cache    CacheConfig `json:"cache"`
	Meals    MealsConfig `json:"meals"`
}

type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
	JSON  bool   `json:"json"`
}

type HTTPConfig struct {
	Addr string `json:"addr"`
}

type CacheConfig struct {
	SizeMB int `json:"size_mb"`
}

type MealsConfig struct {
	DefaultExercise string `json:"default_exercise"`
}

// Load reads path (if non-empty), unifies it with the schema, validates the
// result and applies environment overrides. An empty path yields defaults.
func Load(path string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config schema: %w", err)
	}
	value := schema.LookupPath(cue.ParsePath("#Config"))

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		user := ctx.CompileBytes(data, cue.Filename(path))
		if err := user.Err(); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		value = value.Unify(user)
	}

	if err := value.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if db := os.Getenv(EnvDatabase); db != "" {
		cfg.Database = db
	}

	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	return calendar.LoadLocation(c.Timezone)
}

// DefaultExercise returns the exercise opened for eaten meals.
func (c Config) DefaultExercise() model.ExerciseType {
	return model.ExerciseType(c.Meals.DefaultExercise)
}
