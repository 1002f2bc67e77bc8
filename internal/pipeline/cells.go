package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alnah/go-md2docx/internal/docx"
)

// Default formula styling.
const (
	DefaultFormulaFont = "Consolas"
	DefaultFormulaSize = 10
)

// Whole-cell math patterns. The display form is tried first so "$$x$$" is
// unwrapped as display math rather than inline math holding "$x$".
var (
	displayMathPattern = regexp.MustCompile(`^\s*\$\$(.+)\$\$\s*$`)
	inlineMathPattern  = regexp.MustCompile(`^\s*\$(.+)\$\s*$`)
)

// FormulaStyle is the run formatting applied to spreadsheet-style formula cells.
type FormulaStyle struct {
	Font string // font name for ASCII, high-ANSI and complex-script text
	Size int    // points
}

// DefaultFormulaStyle returns Consolas at 10pt.
func DefaultFormulaStyle() FormulaStyle {
	return FormulaStyle{Font: DefaultFormulaFont, Size: DefaultFormulaSize}
}

func (s FormulaStyle) withDefaults() FormulaStyle {
	if s.Font == "" {
		s.Font = DefaultFormulaFont
	}
	if s.Size <= 0 {
		s.Size = DefaultFormulaSize
	}
	return s
}

// CellStats counts what NormalizeCells visited and changed.
type CellStats struct {
	Tables       int
	Cells        int
	MathCells    int // cells whose math delimiters were stripped
	FormulaCells int // cells restyled as formulas
}

// Changed reports whether any cell was rewritten or restyled.
func (s CellStats) Changed() bool {
	return s.MathCells+s.FormulaCells > 0
}

// MatchMath reports whether text is a single dollar-delimited math expression
// and returns the expression without delimiters, trimmed.
func MatchMath(text string) (string, bool) {
	for _, re := range []*regexp.Regexp{displayMathPattern, inlineMathPattern} {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

// IsFormula reports whether text follows the spreadsheet convention of a
// leading "=".
func IsFormula(text string) bool {
	return strings.HasPrefix(text, "=")
}

// NormalizeCells rewrites every cell of every body table of doc.
//
// A cell whose text is a single $...$ or $$...$$ expression is replaced by
// the bare expression in its first paragraph; its other paragraphs are
// emptied. A cell whose text starts with "=" keeps its text, but every run
// gets style's font and size and every paragraph is left-aligned. Other
// cells are not touched.
func NormalizeCells(doc *docx.Document, style FormulaStyle) CellStats {
	style = style.withDefaults()

	var stats CellStats
	for _, table := range doc.Tables() {
		stats.Tables++
		for _, row := range table.Rows() {
			for _, cell := range row.Cells() {
				stats.Cells++
				switch normalizeCell(cell, style) {
				case cellMath:
					stats.MathCells++
				case cellFormula:
					stats.FormulaCells++
				}
			}
		}
	}
	return stats
}

type cellKind int

const (
	cellPlain cellKind = iota
	cellMath
	cellFormula
)

func normalizeCell(cell *docx.Cell, style FormulaStyle) cellKind {
	paras := cell.Paragraphs()
	if len(paras) == 0 {
		return cellPlain
	}

	text := cell.Text()

	if cleaned, ok := MatchMath(text); ok {
		paras[0].SetText(cleaned)
		for _, p := range paras[1:] {
			p.Clear()
		}
		return cellMath
	}

	if IsFormula(text) {
		for _, p := range paras {
			for _, r := range p.Runs() {
				r.SetFont(style.Font)
				r.SetSize(style.Size)
			}
			p.SetAlignment(docx.AlignLeft)
		}
		return cellFormula
	}

	return cellPlain
}

// NormalizeFile opens the document at path, normalizes its table cells and
// saves it once. On error the file on disk is left as it was.
// A document without any rewritten cell is not rewritten.
func NormalizeFile(path string, style FormulaStyle) (CellStats, error) {
	doc, err := docx.Open(path)
	if err != nil {
		return CellStats{}, err
	}

	stats := NormalizeCells(doc, style)
	if !stats.Changed() {
		return stats, nil
	}

	if err := doc.Save(); err != nil {
		return stats, fmt.Errorf("saving %s: %w", path, err)
	}
	return stats, nil
}
