package md2docx

import (
	"strings"
	"time"

	"github.com/alnah/go-md2docx/internal/pipeline"
)

// Input contains the conversion parameters.
type Input struct {
	InputPath     string // Markdown source (required)
	OutputPath    string // .docx target; defaults to InputPath with a .docx extension
	ReferenceDoc  string // optional .docx whose styles pandoc copies
	SkipNormalize bool   // keep pandoc's table cells as produced
}

// Result is returned by Convert on success.
type Result struct {
	OutputPath string
	Cells      CellStats   // zero when normalization was skipped
	Source     SourceStats // structure of the Markdown source
	Duration   time.Duration
}

// CellStats counts the table cells visited and rewritten after conversion.
type CellStats = pipeline.CellStats

// SourceStats describes the headings and pipe tables of the Markdown source.
type SourceStats = pipeline.SourceStats

// FormulaStyle is the font applied to runs of cells starting with "=".
type FormulaStyle = pipeline.FormulaStyle

// DefaultFormulaStyle returns Consolas at 10pt.
func DefaultFormulaStyle() FormulaStyle {
	return pipeline.DefaultFormulaStyle()
}

// MissingTables reports how many source tables have no Word table in the
// output. Only meaningful when cells were normalized.
func (r *Result) MissingTables() int {
	if r == nil || r.Source.Tables <= r.Cells.Tables {
		return 0
	}
	return r.Source.Tables - r.Cells.Tables
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	pandocPath   string
	formulaStyle FormulaStyle
}

// defaultPandocPath is resolved through PATH.
const defaultPandocPath = "pandoc"

// WithPandocPath sets the pandoc executable name or path.
// An empty path keeps the default.
func WithPandocPath(path string) Option {
	return func(c *Converter) {
		if strings.TrimSpace(path) != "" {
			c.cfg.pandocPath = path
		}
	}
}

// WithRunner replaces the command runner used to locate and invoke pandoc.
// Panics if r is nil (programmer error).
func WithRunner(r CommandRunner) Option {
	if r == nil {
		panic("md2docx: WithRunner runner must not be nil")
	}
	return func(c *Converter) {
		c.runner = r
	}
}

// WithFormulaStyle sets the font and size of formula cells.
// Zero fields fall back to DefaultFormulaStyle.
func WithFormulaStyle(s FormulaStyle) Option {
	return func(c *Converter) {
		c.cfg.formulaStyle = s
	}
}
