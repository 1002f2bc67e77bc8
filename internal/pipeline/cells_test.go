package pipeline

// Notes:
// - Documents are built with docxtest and normalized in memory; NormalizeFile
//   tests cover the open/save boundary on disk.
// - Formatting is asserted through the docx accessors (Font, Size, Alignment),
//   not raw XML; schema ordering is tested in the docx package.

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alnah/go-md2docx/internal/docx"
	"github.com/alnah/go-md2docx/internal/docx/docxtest"
)

// ---------------------------------------------------------------------------
// TestMatchMath - Whole-cell math detection
// ---------------------------------------------------------------------------

func TestMatchMath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"inline", "$x+1$", "x+1", true},
		{"inline with surrounding spaces", " $x+1$ ", "x+1", true},
		{"inner spaces trimmed", "$ x + 1 $", "x + 1", true},
		{"display", "$$a=b$$", "a=b", true},
		{"display with spaces", "  $$ \\frac{1}{2} $$  ", "\\frac{1}{2}", true},
		{"two inline expressions", "$a$ and $b$", "a$ and $b", true},
		{"empty inline", "$$", "", false},
		{"single dollar", "$", "", false},
		{"unclosed", "$x", "", false},
		{"text before", "cost $5$", "", false},
		{"text after", "$5$ each", "", false},
		{"plain", "plain text", "", false},
		{"multi-line", "$a\nb$", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := MatchMath(tt.text)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("MatchMath(%q) = (%q, %v), want (%q, %v)", tt.text, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestIsFormula(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want bool
	}{
		{"=SUM(A1:A3)", true},
		{"=", true},
		{" =A1", false},
		{"a=b", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsFormula(tt.text); got != tt.want {
			t.Errorf("IsFormula(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestNormalizeCells - In-memory rewriting
// ---------------------------------------------------------------------------

func readDoc(t *testing.T, body string) *docx.Document {
	t.Helper()
	doc, err := docx.Read(docxtest.Build(body))
	if err != nil {
		t.Fatalf("docx.Read() error = %v", err)
	}
	return doc
}

func cellAt(doc *docx.Document, table, row, col int) *docx.Cell {
	return doc.Tables()[table].Rows()[row].Cells()[col]
}

func TestNormalizeCells(t *testing.T) {
	t.Parallel()

	doc := readDoc(t, docxtest.Table(
		docxtest.Row("Expr", "Formula", "Note"),
		docxtest.Row(" $x+1$ ", "=SUM(A1:A3)", "plain text"),
		docxtest.Row("$$a=b$$", "", "$5 and $6"),
	))

	stats := NormalizeCells(doc, DefaultFormulaStyle())

	want := CellStats{Tables: 1, Cells: 9, MathCells: 2, FormulaCells: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}

	texts := map[[2]int]string{
		{0, 0}: "Expr",
		{1, 0}: "x+1",
		{1, 1}: "=SUM(A1:A3)",
		{1, 2}: "plain text",
		{2, 0}: "a=b",
		{2, 1}: "",
		{2, 2}: "$5 and $6",
	}
	for pos, want := range texts {
		if got := cellAt(doc, 0, pos[0], pos[1]).Text(); got != want {
			t.Errorf("cell %v Text() = %q, want %q", pos, got, want)
		}
	}

	formula := cellAt(doc, 0, 1, 1).Paragraphs()[0]
	if formula.Alignment() != docx.AlignLeft {
		t.Errorf("formula Alignment() = %q, want left", formula.Alignment())
	}
	for _, r := range formula.Runs() {
		if r.Font() != DefaultFormulaFont || r.Size() != DefaultFormulaSize {
			t.Errorf("formula run = (%q, %d), want (%q, %d)", r.Font(), r.Size(), DefaultFormulaFont, DefaultFormulaSize)
		}
	}

	plain := cellAt(doc, 0, 1, 2).Paragraphs()[0]
	if plain.Alignment() != "" {
		t.Errorf("plain cell Alignment() = %q, want unchanged", plain.Alignment())
	}
	for _, r := range plain.Runs() {
		if r.Font() != "" || r.Size() != 0 {
			t.Errorf("plain cell run restyled: (%q, %d)", r.Font(), r.Size())
		}
	}
}

func TestNormalizeCells_MultiParagraphMath(t *testing.T) {
	t.Parallel()

	doc := readDoc(t, docxtest.Table(
		[][]string{{"$a", "b$"}, {"$x$", ""}},
	))

	stats := NormalizeCells(doc, DefaultFormulaStyle())

	// "$a\nb$" spans a line break and is not a single expression.
	if got := cellAt(doc, 0, 0, 0).Text(); got != "$a\nb$" {
		t.Errorf("Text() = %q, want unchanged", got)
	}

	paras := cellAt(doc, 0, 0, 1).Paragraphs()
	if len(paras) != 2 {
		t.Fatalf("Paragraphs() = %d, want 2", len(paras))
	}
	if got := paras[0].Text(); got != "x" {
		t.Errorf("first paragraph = %q, want %q", got, "x")
	}
	if got := paras[1].Text(); got != "" {
		t.Errorf("second paragraph = %q, want empty", got)
	}
	if stats.MathCells != 1 {
		t.Errorf("MathCells = %d, want 1", stats.MathCells)
	}
}

func TestNormalizeCells_ExtraParagraphsCleared(t *testing.T) {
	t.Parallel()

	doc := readDoc(t, docxtest.Table(
		[][]string{{"", "$y$", ""}},
	))

	NormalizeCells(doc, DefaultFormulaStyle())

	cell := cellAt(doc, 0, 0, 0)
	paras := cell.Paragraphs()
	if len(paras) != 3 {
		t.Fatalf("Paragraphs() = %d, want 3", len(paras))
	}
	if paras[0].Text() != "y" || paras[1].Text() != "" || paras[2].Text() != "" {
		t.Errorf("paragraphs = %q %q %q, want y and two empty", paras[0].Text(), paras[1].Text(), paras[2].Text())
	}
	if cell.Text() != "y" {
		t.Errorf("Text() = %q, want %q", cell.Text(), "y")
	}
}

func TestNormalizeCells_MultiParagraphFormula(t *testing.T) {
	t.Parallel()

	doc := readDoc(t, docxtest.Table(
		[][]string{{"=A1", "+B1"}},
	))

	stats := NormalizeCells(doc, FormulaStyle{Font: "Courier New", Size: 9})

	if stats.FormulaCells != 1 {
		t.Fatalf("FormulaCells = %d, want 1", stats.FormulaCells)
	}
	for i, p := range cellAt(doc, 0, 0, 0).Paragraphs() {
		if p.Alignment() != docx.AlignLeft {
			t.Errorf("paragraph %d Alignment() = %q, want left", i, p.Alignment())
		}
		for _, r := range p.Runs() {
			if r.Font() != "Courier New" || r.Size() != 9 {
				t.Errorf("paragraph %d run = (%q, %d), want (Courier New, 9)", i, r.Font(), r.Size())
			}
		}
	}
	if got := cellAt(doc, 0, 0, 0).Text(); got != "=A1\n+B1" {
		t.Errorf("Text() = %q, formula text must not change", got)
	}
}

func TestNormalizeCells_StyleDefaults(t *testing.T) {
	t.Parallel()

	doc := readDoc(t, docxtest.Table(docxtest.Row("=1+1")))

	NormalizeCells(doc, FormulaStyle{})

	r := cellAt(doc, 0, 0, 0).Paragraphs()[0].Runs()[0]
	if r.Font() != DefaultFormulaFont || r.Size() != DefaultFormulaSize {
		t.Errorf("run = (%q, %d), want defaults", r.Font(), r.Size())
	}
}

func TestNormalizeCells_NoTables(t *testing.T) {
	t.Parallel()

	doc := readDoc(t, docxtest.Paragraph("$x$ outside any table"))

	stats := NormalizeCells(doc, DefaultFormulaStyle())

	if stats != (CellStats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
	if stats.Changed() {
		t.Error("Changed() = true, want false")
	}
}

func TestNormalizeCells_PreservesOrder(t *testing.T) {
	t.Parallel()

	doc := readDoc(t,
		docxtest.Table(docxtest.Row("$1$", "b"), docxtest.Row("c", "$4$"))+
			docxtest.Paragraph("between")+
			docxtest.Table(docxtest.Row("=e", "$$6$$")),
	)

	NormalizeCells(doc, DefaultFormulaStyle())

	var got []string
	for _, table := range doc.Tables() {
		for _, row := range table.Rows() {
			for _, cell := range row.Cells() {
				got = append(got, cell.Text())
			}
		}
	}
	want := []string{"1", "b", "c", "4", "=e", "6"}
	if len(got) != len(want) {
		t.Fatalf("cells = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cell %d = %q, want %q", i, got[i], want[i])
		}
	}
}

// ---------------------------------------------------------------------------
// TestNormalizeFile - Open, normalize, save once
// ---------------------------------------------------------------------------

func TestNormalizeFile(t *testing.T) {
	t.Parallel()

	path := docxtest.Write(t, t.TempDir(), docxtest.Table(
		docxtest.Row("$x$", "=A1"),
	))

	stats, err := NormalizeFile(path, DefaultFormulaStyle())
	if err != nil {
		t.Fatalf("NormalizeFile() error = %v", err)
	}
	if stats.MathCells != 1 || stats.FormulaCells != 1 {
		t.Errorf("stats = %+v", stats)
	}

	doc, err := docx.Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if got := cellAt(doc, 0, 0, 0).Text(); got != "x" {
		t.Errorf("saved cell Text() = %q, want %q", got, "x")
	}
	if got := cellAt(doc, 0, 0, 1).Paragraphs()[0].Runs()[0].Font(); got != DefaultFormulaFont {
		t.Errorf("saved formula font = %q, want %q", got, DefaultFormulaFont)
	}
}

func TestNormalizeFile_UnchangedNotRewritten(t *testing.T) {
	t.Parallel()

	path := docxtest.Write(t, t.TempDir(), docxtest.Table(docxtest.Row("plain")))
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	stats, err := NormalizeFile(path, DefaultFormulaStyle())
	if err != nil {
		t.Fatalf("NormalizeFile() error = %v", err)
	}
	if stats.Cells != 1 || stats.Changed() {
		t.Errorf("stats = %+v", stats)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("document without changes was rewritten")
	}
}

func TestNormalizeFile_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := NormalizeFile(filepath.Join(t.TempDir(), "missing.docx"), DefaultFormulaStyle())
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want os.ErrNotExist", err)
		}
	})

	t.Run("not a document", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.docx")
		if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := NormalizeFile(path, DefaultFormulaStyle())
		if !errors.Is(err, docx.ErrInvalidDocument) {
			t.Errorf("error = %v, want ErrInvalidDocument", err)
		}

		data, _ := os.ReadFile(path)
		if string(data) != "not a zip" {
			t.Error("invalid file was modified")
		}
	})
}
