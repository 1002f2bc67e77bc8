// Package md2docx converts Markdown documents to Word (.docx) using pandoc.
//
// # Quick Start
//
// Create a converter and convert a file:
//
//	conv := md2docx.NewConverter()
//
//	result, err := conv.Convert(ctx, md2docx.Input{
//	    InputPath: "report.md",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("written to", result.OutputPath)
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Line preprocessing: a blank line is inserted before headings, quotes,
//     code fences and $$ blocks that follow text, and dense lines (math,
//     long lines with full-width colons or commas) get a hard line break
//  2. pandoc converts the preprocessed copy with GitHub-flavored tables,
//     $...$ math and East Asian line breaks
//  3. Table cell normalization: cells holding a single $...$ or $$...$$
//     expression are unwrapped; cells starting with "=" are set in a
//     fixed-width font and left-aligned
//
// Pipe table rows are never modified by preprocessing.
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv := md2docx.NewConverter(
//	    md2docx.WithPandocPath("/opt/pandoc/bin/pandoc"),
//	    md2docx.WithFormulaStyle(md2docx.FormulaStyle{Font: "Courier New", Size: 9}),
//	)
//
// # Errors
//
// Failures are reported with sentinel errors usable with errors.Is:
// ErrInputNotFound, ErrPandocNotFound, ErrConversion and ErrNormalize.
package md2docx
