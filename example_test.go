package md2docx_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-md2docx"
)

// Example converts a Markdown file next to it. Requires pandoc, so it is
// compiled but not run.
func Example() {
	conv := md2docx.NewConverter()

	result, err := conv.Convert(context.Background(), md2docx.Input{
		InputPath:    "report.md",
		ReferenceDoc: "styles.docx",
	})
	if errors.Is(err, md2docx.ErrPandocNotFound) {
		fmt.Println("install pandoc first")
		return
	}
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("%s: %d math cells, %d formula cells\n",
		result.OutputPath, result.Cells.MathCells, result.Cells.FormulaCells)
}

// ExamplePandocArgs shows the pandoc invocation used for a conversion.
func ExamplePandocArgs() {
	args := md2docx.PandocArgs("in.md", "out.docx", "", "")
	fmt.Println("pandoc " + strings.Join(args, " "))
	// Output: pandoc --from gfm+tex_math_dollars+raw_html --to docx --output out.docx --wrap=none --columns=999 -M east_asian_line_breaks=true --embed-resources in.md
}

// ExampleWithFormulaStyle configures the font of "=..." formula cells.
func ExampleWithFormulaStyle() {
	conv := md2docx.NewConverter(
		md2docx.WithPandocPath("pandoc"),
		md2docx.WithFormulaStyle(md2docx.FormulaStyle{Font: "Courier New", Size: 9}),
	)
	fmt.Println(conv.PandocPath())
	// Output: pandoc
}
