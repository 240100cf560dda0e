// Package config provides Viper-based configuration loading for the dice engine.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// EngineConfig holds the rules-engine tunables for an encounter.
type EngineConfig struct {
	// PlayerDice is the number of dice in the player's set.
	PlayerDice int `mapstructure:"player_dice"`
	// MaxRetries is the per-turn reroll budget.
	MaxRetries int `mapstructure:"max_retries"`
	// PlayerMaxHP is the player's starting and maximum hit points.
	PlayerMaxHP int `mapstructure:"player_max_hp"`
	// OverflowWarnAfter is the number of Earth overflow corrections in one
	// roll after which a warning is logged.
	OverflowWarnAfter int `mapstructure:"overflow_warn_after"`
}

// ElementEntry is one row of the ordered element probability table.
type ElementEntry struct {
	// Type is the element name: "earth", "fire", "water" or "wind".
	Type string `mapstructure:"type"`
	// Probability is the share of the [0,100) draw range, in percent.
	Probability float64 `mapstructure:"probability"`
}

// ScriptingConfig holds encounter hook script settings.
type ScriptingConfig struct {
	// ScriptDir is the directory of *.lua hook scripts; empty disables scripting.
	ScriptDir string `mapstructure:"script_dir"`
	// InstructionLimit caps the Lua opcodes per hook call; 0 uses the default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// DatabaseConfig holds PostgreSQL connection settings for encounter history.
type DatabaseConfig struct {
	// Enabled turns encounter history persistence on.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Config is the top-level application configuration.
type Config struct {
	Logging      LoggingConfig   `mapstructure:"logging"`
	Engine       EngineConfig    `mapstructure:"engine"`
	ElementTable []ElementEntry  `mapstructure:"element_table"`
	Scripting    ScriptingConfig `mapstructure:"scripting"`
	Database     DatabaseConfig  `mapstructure:"database"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEngine(c.Engine); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateElementTable(c.ElementTable); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateEngine(e EngineConfig) error {
	var errs []string
	if e.PlayerDice < 1 {
		errs = append(errs, fmt.Sprintf("engine.player_dice must be >= 1, got %d", e.PlayerDice))
	}
	if e.MaxRetries < 0 {
		errs = append(errs, fmt.Sprintf("engine.max_retries must be >= 0, got %d", e.MaxRetries))
	}
	if e.PlayerMaxHP < 1 {
		errs = append(errs, fmt.Sprintf("engine.player_max_hp must be >= 1, got %d", e.PlayerMaxHP))
	}
	if e.OverflowWarnAfter < 1 {
		errs = append(errs, fmt.Sprintf("engine.overflow_warn_after must be >= 1, got %d", e.OverflowWarnAfter))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// maxDraw is the highest value of the [0,100) element draw at 0.01 resolution.
const maxDraw = 99.99

func validateElementTable(entries []ElementEntry) error {
	validTypes := map[string]bool{"earth": true, "fire": true, "water": true, "wind": true}
	seen := make(map[string]int, len(entries))
	var errs []string
	start := 0.0
	for i, e := range entries {
		typ := strings.ToLower(e.Type)
		if !validTypes[typ] {
			errs = append(errs, fmt.Sprintf("element_table[%d].type must be one of [earth, fire, water, wind], got %q", i, e.Type))
		}
		if e.Probability < 0 || e.Probability > 100 {
			errs = append(errs, fmt.Sprintf("element_table[%d].probability must be 0-100, got %g", i, e.Probability))
		}
		if first, dup := seen[typ]; dup {
			errs = append(errs, fmt.Sprintf("element_table[%d].type %q duplicates element_table[%d]", i, e.Type, first))
		} else {
			seen[typ] = i
		}
		// Earth on every draw makes the overflow correction unresolvable.
		if typ == "earth" && start <= 0 && start+e.Probability > maxDraw {
			errs = append(errs, fmt.Sprintf("element_table[%d]: earth must leave part of the draw range to other types", i))
		}
		start += e.Probability
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with DICE_ prefix
	v.SetEnvPrefix("DICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
// Defaults are applied for any key the instance leaves unset.
//
// Precondition: v must be non-nil.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the built-in configuration used when no file is supplied.
//
// Postcondition: Default().Validate() == nil.
func Default() Config {
	cfg, err := LoadFromViper(viper.New())
	if err != nil {
		panic("config: built-in defaults are invalid: " + err.Error())
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("engine.player_dice", 5)
	v.SetDefault("engine.max_retries", 2)
	v.SetDefault("engine.player_max_hp", 1000)
	v.SetDefault("engine.overflow_warn_after", 64)

	v.SetDefault("element_table", []map[string]any{
		{"type": "earth", "probability": 15},
		{"type": "fire", "probability": 15},
		{"type": "water", "probability": 15},
		{"type": "wind", "probability": 15},
	})

	v.SetDefault("scripting.script_dir", "")
	v.SetDefault("scripting.instruction_limit", 0)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "dice")
	v.SetDefault("database.password", "dice")
	v.SetDefault("database.name", "dicefight")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
}
