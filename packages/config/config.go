// Package config loads the sheetcalc configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/CasuallyAlive/CS3500-Spreadsheet/packages/spreadsheet"
)

// Config is the decoded form of a sheetcalc yaml file
type Config struct {
	Version     string      `yaml:"version" validate:"required"`
	Normalize   string      `yaml:"normalize" validate:"oneof=none upper lower"`
	NamePattern string      `yaml:"name_pattern" validate:"omitempty,pattern"`
	Storage     StorageConf `yaml:"storage"`
	Log         LogConf     `yaml:"log"`
}

// StorageConf picks the format used for paths without a known extension
// and the bucket used inside bolt databases.
type StorageConf struct {
	Format string `yaml:"format" validate:"oneof=xml yaml xlsx bolt"`
	Sheet  string `yaml:"sheet" validate:"required"`
}

type LogConf struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("pattern", validatePattern); err != nil {
		panic(fmt.Sprintf("config: register pattern validation: %v", err))
	}
}

// validatePattern accepts strings that compile as regular expressions
func validatePattern(fl validator.FieldLevel) bool {
	_, err := regexp.Compile(fl.Field().String())
	return err == nil
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() Config {
	return Config{
		Version:   spreadsheet.DefaultVersion,
		Normalize: "none",
		Storage: StorageConf{
			Format: "xml",
			Sheet:  "main",
		},
		Log: LogConf{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the config at path over the defaults. an empty path or a
// missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read the config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every field against its allowed values
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SpreadsheetContext builds the store options described by c
func (c *Config) SpreadsheetContext(logger *slog.Logger) (*spreadsheet.SpreadsheetContext, error) {
	normalize, err := spreadsheet.NormalizerByName(c.Normalize)
	if err != nil {
		return nil, err
	}
	ctx := &spreadsheet.SpreadsheetContext{
		Normalize: normalize,
		Version:   c.Version,
		Logger:    logger,
	}
	if c.NamePattern != "" {
		ctx.Validate, err = spreadsheet.PatternValidator(c.NamePattern)
		if err != nil {
			return nil, err
		}
	}
	return ctx, nil
}

// Logger returns a logger writing to w in the configured format, dropping
// records below the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
