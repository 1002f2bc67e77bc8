package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	md2docx "github.com/alnah/go-md2docx"
	"github.com/alnah/go-md2docx/internal/config"
	"github.com/alnah/go-md2docx/internal/docx"
	"github.com/alnah/go-md2docx/internal/fileutil"
	"github.com/alnah/go-md2docx/internal/hints"
)

// convertParams is the fully resolved set of options for one conversion.
type convertParams struct {
	input      md2docx.Input
	pandocPath string
	formula    md2docx.FormulaStyle
	quiet      bool
	verbose    bool
	outputDir  string // created before conversion when non-empty
}

// cliError carries a user-facing message while keeping the cause for exitCodeFor.
type cliError struct {
	msg string
	err error
}

func (e *cliError) Error() string { return e.msg }
func (e *cliError) Unwrap() error { return e.err }

// runConvertCmd parses convert arguments, runs the conversion and reports
// errors on stderr. Returns the process exit code.
func runConvertCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseConvertFlags(args, env.Stdout)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "Error: %v\n", err)
		fmt.Fprintln(env.Stderr, "Run 'md2docx help convert' for usage.")
		return ExitUsage
	}

	if err := runConvert(ctx, positional, flags, env); err != nil {
		var ce *cliError
		if errors.As(err, &ce) {
			fmt.Fprintln(env.Stderr, ce.msg)
		} else {
			fmt.Fprintf(env.Stderr, "Error: %v\n", err)
		}
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runConvert resolves configuration and converts a single file.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	warnUnknownEnvVars(env.Stderr)

	params, err := resolveParams(positionalArgs, flags, loadEnvConfig())
	if err != nil {
		return err
	}

	if params.outputDir != "" {
		if err := os.MkdirAll(params.outputDir, 0o750); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	conv := md2docx.NewConverter(
		md2docx.WithPandocPath(params.pandocPath),
		md2docx.WithRunner(env.runner()),
		md2docx.WithFormulaStyle(params.formula),
	)

	if params.verbose {
		fmt.Fprintf(env.Stderr, "Pandoc: %s\n", conv.PandocPath())
	}

	result, err := conv.Convert(ctx, params.input)
	if err != nil {
		return explainConvertError(err, params)
	}

	if !params.quiet {
		fmt.Fprintf(env.Stdout, "Converted: %s -> %s\n", params.input.InputPath, result.OutputPath)
	}
	if params.verbose {
		printStats(env, result, params.input.SkipNormalize)
	}
	if n := result.MissingTables(); n > 0 && !params.input.SkipNormalize && !params.quiet {
		fmt.Fprintf(env.Stderr, "warning: %d of %d markdown tables have no table in %s\n",
			n, result.Source.Tables, result.OutputPath)
	}

	return nil
}

// resolveParams merges flags > env vars > config file > defaults.
func resolveParams(positionalArgs []string, flags *convertFlags, envCfg *envConfig) (*convertParams, error) {
	if len(positionalArgs) == 0 {
		return nil, fmt.Errorf("%w: missing input file", ErrUsage)
	}
	if len(positionalArgs) > 2 {
		return nil, fmt.Errorf("%w: too many arguments: %v", ErrUsage, positionalArgs[2:])
	}

	cfg, err := loadConfig(flags.common.config, envCfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	applyEnvConfig(envCfg, cfg)
	if err := mergeFlags(flags, cfg); err != nil {
		return nil, err
	}

	params := &convertParams{
		input: md2docx.Input{
			InputPath:     positionalArgs[0],
			ReferenceDoc:  cfg.Pandoc.ReferenceDoc,
			SkipNormalize: !cfg.Normalize.IsEnabled(),
		},
		pandocPath: cfg.Pandoc.Path,
		formula:    md2docx.FormulaStyle{Font: cfg.Formula.Font, Size: cfg.Formula.Size},
		quiet:      flags.common.quiet,
		verbose:    flags.common.verbose && !flags.common.quiet,
	}

	switch {
	case len(positionalArgs) == 2 && flags.output != "":
		return nil, fmt.Errorf("%w: output given both as argument and --output", ErrUsage)
	case len(positionalArgs) == 2:
		params.input.OutputPath = positionalArgs[1]
	case flags.output != "":
		params.input.OutputPath = flags.output
	case cfg.Output.DefaultDir != "":
		name := filepath.Base(fileutil.ReplaceExt(params.input.InputPath, ".docx"))
		params.input.OutputPath = filepath.Join(cfg.Output.DefaultDir, name)
		params.outputDir = cfg.Output.DefaultDir
	}

	return params, nil
}

// loadConfig loads the config named by the flag, else by MD2DOCX_CONFIG.
// Without either, defaults are returned.
func loadConfig(flagValue, envValue string) (*config.Config, error) {
	name := flagValue
	if name == "" {
		name = envValue
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		var notFound *config.NotFoundError
		if errors.As(err, &notFound) {
			return nil, &cliError{msg: "Error: " + err.Error() + hints.ForConfigNotFound(notFound.Tried), err: err}
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags applies explicitly set CLI flags over cfg.
func mergeFlags(flags *convertFlags, cfg *config.Config) error {
	if flags.pandoc != "" {
		cfg.Pandoc.Path = flags.pandoc
	}
	if flags.referenceDoc != "" {
		cfg.Pandoc.ReferenceDoc = flags.referenceDoc
	}
	if flags.noNormalize {
		disabled := false
		cfg.Normalize.Enabled = &disabled
	}
	if flags.formula.font != "" {
		cfg.Formula.Font = flags.formula.font
	}
	if flags.formula.size != 0 {
		if flags.formula.size < config.MinFormulaSize || flags.formula.size > config.MaxFormulaSize {
			return fmt.Errorf("%w: --formula-size must be between %d and %d, got %d",
				ErrUsage, config.MinFormulaSize, config.MaxFormulaSize, flags.formula.size)
		}
		cfg.Formula.Size = flags.formula.size
	}
	return nil
}

// explainConvertError turns library errors into the messages users see.
func explainConvertError(err error, params *convertParams) error {
	var msg string
	switch {
	case errors.Is(err, md2docx.ErrInputNotFound):
		msg = "Input file not found: " + params.input.InputPath
	case errors.Is(err, md2docx.ErrPandocNotFound):
		msg = "Error: pandoc not found. Please install pandoc from " + hints.PandocInstallURL +
			hints.ForPandocNotFound()
	case errors.Is(err, md2docx.ErrConversion):
		msg = "Pandoc conversion failed.\n" + err.Error() + hints.ForConversionFailed(params.input.ReferenceDoc)
	case errors.Is(err, docx.ErrInvalidDocument):
		msg = "Error: " + err.Error() + hints.ForInvalidDocument()
	case errors.Is(err, context.Canceled):
		msg = "Error: conversion interrupted"
	default:
		msg = "Error: " + err.Error()
	}
	return &cliError{msg: msg, err: err}
}

// printStats writes verbose statistics to stderr.
func printStats(env *Environment, result *md2docx.Result, skipped bool) {
	fmt.Fprintf(env.Stderr, "Source: %d headings, %d tables, %d lines\n",
		result.Source.Headings, result.Source.Tables, result.Source.Lines)
	if skipped {
		fmt.Fprintln(env.Stderr, "Cells: normalization skipped")
	} else {
		c := result.Cells
		fmt.Fprintf(env.Stderr, "Cells: %d tables, %d cells, %d math, %d formula\n",
			c.Tables, c.Cells, c.MathCells, c.FormulaCells)
	}
	fmt.Fprintf(env.Stderr, "Duration: %v\n", result.Duration.Round(time.Millisecond))
}
