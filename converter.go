package md2docx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-md2docx/internal/fileutil"
	"github.com/alnah/go-md2docx/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ CommandRunner                 = ExecRunner{}
	_ pipeline.MarkdownPreprocessor = pipeline.LinePreprocessor{}
)

// Converter orchestrates the Markdown-to-DOCX pipeline:
// line preprocessing, pandoc, then table cell normalization.
// A Converter holds no per-conversion state and is safe for concurrent use.
type Converter struct {
	cfg          converterConfig
	runner       CommandRunner
	preprocessor pipeline.MarkdownPreprocessor
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithPandocPath, WithFormulaStyle).
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		cfg: converterConfig{
			pandocPath:   defaultPandocPath,
			formulaStyle: DefaultFormulaStyle(),
		},
		runner:       ExecRunner{},
		preprocessor: pipeline.LinePreprocessor{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// PandocPath returns the configured pandoc executable name or path.
func (c *Converter) PandocPath() string {
	return c.cfg.pandocPath
}

// Convert runs the full pipeline for one file.
//
// The preprocessed Markdown lives in a temporary file that is removed before
// Convert returns, whatever the outcome. When pandoc fails, no normalization
// is attempted. The context cancels the pandoc subprocess.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	start := time.Now()

	outputPath, err := c.validateInput(input)
	if err != nil {
		return nil, err
	}

	pandocPath, err := c.runner.LookPath(c.cfg.pandocPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPandocNotFound, c.cfg.pandocPath)
	}

	data, err := os.ReadFile(input.InputPath) // #nosec G304 -- user-provided input
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadMarkdown, err)
	}
	content := string(data)

	tmpPath, cleanup, err := pipeline.WritePreprocessed(c.preprocessor.PreprocessMarkdown(content))
	if err != nil {
		return nil, fmt.Errorf("writing preprocessed markdown: %w", err)
	}
	defer cleanup()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	args := PandocArgs(tmpPath, outputPath, input.ReferenceDoc, resourceDir(input.InputPath))
	if _, stderr, err := c.runner.Run(ctx, pandocPath, args...); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, conversionError(err, stderr)
	}

	result = &Result{
		OutputPath: outputPath,
		Source:     pipeline.InspectMarkdown(content),
	}

	if !input.SkipNormalize {
		result.Cells, err = pipeline.NormalizeFile(outputPath, c.cfg.formulaStyle)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNormalize, err)
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// validateInput checks the paths and returns the resolved output path.
func (c *Converter) validateInput(input Input) (string, error) {
	if strings.TrimSpace(input.InputPath) == "" {
		return "", ErrEmptyInputPath
	}
	if !fileutil.FileExists(input.InputPath) {
		return "", fmt.Errorf("%w: %s", ErrInputNotFound, input.InputPath)
	}

	outputPath := input.OutputPath
	if outputPath == "" {
		outputPath = fileutil.ReplaceExt(input.InputPath, ".docx")
	}
	if filepath.Clean(outputPath) == filepath.Clean(input.InputPath) {
		return "", fmt.Errorf("%w: output would overwrite input %s", ErrInvalidOutputPath, input.InputPath)
	}
	if info, err := os.Stat(outputPath); err == nil && info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrInvalidOutputPath, outputPath)
	}

	if input.ReferenceDoc != "" && !fileutil.FileExists(input.ReferenceDoc) {
		return "", fmt.Errorf("%w: %s", ErrReferenceDocMissing, input.ReferenceDoc)
	}

	return outputPath, nil
}

// resourceDir is where pandoc resolves relative image paths, since the
// preprocessed copy lives in the temp directory.
func resourceDir(inputPath string) string {
	abs, err := filepath.Abs(inputPath)
	if err != nil {
		return filepath.Dir(inputPath)
	}
	return filepath.Dir(abs)
}

// conversionError wraps a failed pandoc run with its exit status and stderr.
func conversionError(err error, stderr string) error {
	detail := err.Error()
	var exitErr interface{ ExitCode() int }
	if errors.As(err, &exitErr) {
		detail = fmt.Sprintf("exit status %d", exitErr.ExitCode())
	}
	if msg := strings.TrimSpace(stderr); msg != "" {
		detail += ": " + msg
	}
	return fmt.Errorf("%w: %s", ErrConversion, detail)
}
