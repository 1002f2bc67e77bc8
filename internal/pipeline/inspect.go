package pipeline

import (
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// SourceStats describes the block structure of a Markdown source.
type SourceStats struct {
	Headings int
	Tables   int
	Lines    int
}

// markdown parses GitHub-flavored pipe tables, the dialect handed to pandoc.
var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// InspectMarkdown counts headings and pipe tables in content.
// It only analyzes; nothing is rendered.
func InspectMarkdown(content string) SourceStats {
	src := []byte(content)
	root := markdown.Parser().Parse(text.NewReader(src))

	stats := SourceStats{Lines: len(SplitLines(content))}
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch n.(type) {
		case *gmast.Heading:
			stats.Headings++
		case *east.Table:
			stats.Tables++
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})
	return stats
}
