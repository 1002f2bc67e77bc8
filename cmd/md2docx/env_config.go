package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alnah/go-md2docx/internal/config"
)

// envPrefix marks the environment variables read by md2docx.
const envPrefix = "MD2DOCX_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath   string // MD2DOCX_CONFIG: config file name or path
	PandocPath   string // MD2DOCX_PANDOC: pandoc executable
	ReferenceDoc string // MD2DOCX_REFERENCE_DOC: style reference .docx
	OutputDir    string // MD2DOCX_OUTPUT_DIR: default output directory
}

// knownEnvVars lists valid MD2DOCX_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MD2DOCX_CONFIG":        true,
	"MD2DOCX_PANDOC":        true,
	"MD2DOCX_REFERENCE_DOC": true,
	"MD2DOCX_OUTPUT_DIR":    true,
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	return &envConfig{
		ConfigPath:   os.Getenv("MD2DOCX_CONFIG"),
		PandocPath:   os.Getenv("MD2DOCX_PANDOC"),
		ReferenceDoc: os.Getenv("MD2DOCX_REFERENCE_DOC"),
		OutputDir:    os.Getenv("MD2DOCX_OUTPUT_DIR"),
	}
}

// warnUnknownEnvVars logs warnings for unrecognized MD2DOCX_* variables.
// Helps catch typos like MD2DOCX_REFERENCE instead of MD2DOCX_REFERENCE_DOC.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name := strings.SplitN(env, "=", 2)[0]
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment variable values over the config file.
// Resulting precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.PandocPath != "" {
		cfg.Pandoc.Path = env.PandocPath
	}
	if env.ReferenceDoc != "" {
		cfg.Pandoc.ReferenceDoc = env.ReferenceDoc
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
}
