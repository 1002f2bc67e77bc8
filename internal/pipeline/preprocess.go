package pipeline

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/alnah/go-md2docx/internal/fileutil"
)

// Markers that open a Markdown block when they start a stripped line.
var blockMarkers = []string{"#", ">", "```", "~~~", "$$"}

// Dense-line thresholds, in characters.
const (
	fullWidthColonMinLen = 40
	commaMinLen          = 80
)

// hardBreak is the Markdown hard line break marker.
const hardBreak = "  "

var crlfOrCR = regexp.MustCompile(`\r\n?`)

// MarkdownPreprocessor prepares Markdown text for the external converter.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(content string) string
}

// LinePreprocessor inserts block separators and hard breaks line by line.
type LinePreprocessor struct{}

// PreprocessMarkdown implements MarkdownPreprocessor.
func (LinePreprocessor) PreprocessMarkdown(content string) string {
	return PreprocessMarkdown(content)
}

// PreprocessMarkdown normalizes line endings, runs PreprocessLines over the
// content and joins the result with "\n". The result has no trailing newline.
func PreprocessMarkdown(content string) string {
	return strings.Join(PreprocessLines(SplitLines(content)), "\n")
}

// SplitLines normalizes line endings and splits content into lines.
// A final newline terminates the last line instead of opening an empty one,
// and empty content has no lines.
func SplitLines(content string) []string {
	content = crlfOrCR.ReplaceAllString(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

// PreprocessLines applies the separator and hard-break rules to lines.
//
// A block-start line that follows a non-blank line gets an empty line
// inserted before it. A dense line followed by ordinary text gets two
// trailing spaces. Table rows pass through untouched. Lines are never
// reordered or removed.
func PreprocessLines(lines []string) []string {
	out := make([]string, 0, len(lines)+len(lines)/4)
	prevBlank := true

	for i, cur := range lines {
		if IsTableRow(cur) {
			out = append(out, cur)
			prevBlank = false
			continue
		}

		if IsBlockStart(cur) {
			if !prevBlank && cur != "" {
				out = append(out, "")
			}
			out = append(out, cur)
			prevBlank = cur == ""
			continue
		}

		next := ""
		if i+1 < len(lines) {
			next = lines[i+1]
		}
		if needsHardBreak(cur, next) {
			cur += hardBreak
		}

		out = append(out, cur)
		prevBlank = cur == ""
	}

	return out
}

// IsBlockStart reports whether line opens a Markdown block: its stripped
// content is empty or starts with a heading, blockquote, code fence or
// display-math marker.
func IsBlockStart(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" {
		return true
	}
	for _, m := range blockMarkers {
		if strings.HasPrefix(s, m) {
			return true
		}
	}
	return false
}

// IsTableRow reports whether line is a pipe table row.
func IsTableRow(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "|")
}

// IsDense reports whether line is likely to be merged with its successor by
// soft wrapping: it contains math, or it is a long line punctuated with
// full-width colons or commas.
func IsDense(line string) bool {
	if strings.Contains(line, "$") {
		return true
	}
	n := utf8.RuneCountInString(line)
	if strings.Contains(line, "：") && n > fullWidthColonMinLen {
		return true
	}
	return strings.Contains(line, ",") && n > commaMinLen
}

func needsHardBreak(cur, next string) bool {
	if cur == "" || next == "" || IsBlockStart(next) {
		return false
	}
	return IsDense(cur) && !strings.HasSuffix(cur, hardBreak)
}

// WritePreprocessed stores content in a temporary .md file. The caller must
// call cleanup once the file is no longer needed.
func WritePreprocessed(content string) (path string, cleanup func(), err error) {
	return fileutil.WriteTempFile(content, "md")
}
