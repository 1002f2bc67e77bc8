package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/alnah/go-md2docx/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
	ErrConfigTooLarge  = errors.New("config file exceeds maximum size")
)

// Field length limits.
const (
	MaxPathLength = 4096 // PATH_MAX on Linux
	MaxFontLength = 64   // Font family name
)

// Formula size bounds in points.
const (
	MinFormulaSize = 1
	MaxFormulaSize = 72
)

// Defaults applied by DefaultConfig.
const (
	DefaultPandocPath  = "pandoc"
	DefaultFormulaFont = "Consolas"
	DefaultFormulaSize = 10
)

// MaxFileSize limits config input to prevent memory exhaustion (1MB).
var MaxFileSize = 1 << 20

// appDirName is the directory under the user config dir searched for named configs.
const appDirName = "go-md2docx"

// Config holds all configuration for a conversion.
type Config struct {
	Pandoc    PandocConfig    `yaml:"pandoc"`
	Output    OutputConfig    `yaml:"output"`
	Formula   FormulaConfig   `yaml:"formula"`
	Normalize NormalizeConfig `yaml:"normalize"`
}

// PandocConfig defines how the external converter is invoked.
type PandocConfig struct {
	Path         string `yaml:"path"`         // Binary name or path (default: "pandoc")
	ReferenceDoc string `yaml:"referenceDoc"` // Optional .docx controlling output styles
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = next to the input file
}

// FormulaConfig defines how "=..." table cells are styled.
type FormulaConfig struct {
	Font string `yaml:"font"` // Fixed-width font family
	Size int    `yaml:"size"` // Points
}

// NormalizeConfig toggles the table cell normalization stage.
// Enabled is a pointer so an absent key keeps the default (true).
type NormalizeConfig struct {
	Enabled *bool `yaml:"enabled"`
}

// IsEnabled reports whether cell normalization should run.
func (n NormalizeConfig) IsEnabled() bool {
	return n.Enabled == nil || *n.Enabled
}

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("pandoc.path", c.Pandoc.Path, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("pandoc.referenceDoc", c.Pandoc.ReferenceDoc, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("formula.font", c.Formula.Font, MaxFontLength); err != nil {
		return err
	}

	if c.Pandoc.ReferenceDoc != "" && !strings.EqualFold(filepath.Ext(c.Pandoc.ReferenceDoc), ".docx") {
		return fmt.Errorf("%w: pandoc.referenceDoc must be a .docx file, got %q", ErrInvalidValue, c.Pandoc.ReferenceDoc)
	}
	if c.Formula.Size != 0 && (c.Formula.Size < MinFormulaSize || c.Formula.Size > MaxFormulaSize) {
		return fmt.Errorf("%w: formula.size must be between %d and %d, got %d",
			ErrInvalidValue, MinFormulaSize, MaxFormulaSize, c.Formula.Size)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Pandoc:  PandocConfig{Path: DefaultPandocPath},
		Output:  OutputConfig{DefaultDir: ""},
		Formula: FormulaConfig{Font: DefaultFormulaFont, Size: DefaultFormulaSize},
	}
}

// ApplyDefaults fills zero values left by a partial config file.
func (c *Config) ApplyDefaults() {
	if c.Pandoc.Path == "" {
		c.Pandoc.Path = DefaultPandocPath
	}
	if c.Formula.Font == "" {
		c.Formula.Font = DefaultFormulaFont
	}
	if c.Formula.Size == 0 {
		c.Formula.Size = DefaultFormulaSize
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	return cfg, nil
}

// parse decodes YAML strictly: unknown fields are rejected so typos surface.
func parse(data []byte) (*Config, error) {
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigTooLarge, len(data), MaxFileSize)
	}

	var cfg Config
	if len(strings.TrimSpace(string(data))) == 0 {
		return &cfg, nil
	}
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return &cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, user config dir.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, appDirName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", &NotFoundError{Tried: triedPaths}
}

// NotFoundError lists every location searched for a named config.
type NotFoundError struct {
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: tried %s", ErrConfigNotFound, strings.Join(e.Tried, ", "))
}

// Unwrap lets errors.Is match ErrConfigNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrConfigNotFound
}
