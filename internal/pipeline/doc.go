// Package pipeline implements the two text-normalization stages around the
// pandoc Markdown-to-DOCX conversion:
//   - Line preprocessing: blank-line separators before blocks and hard line
//     breaks after dense lines, so pandoc keeps paragraphs and lines apart
//   - Cell normalization: unwrapping $...$ math and styling =... formulas in
//     the table cells of the converted document
//
// Source inspection (heading and table counts) is provided for diagnostics.
// Running pandoc itself is handled by the root md2docx package.
package pipeline
