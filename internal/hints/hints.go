// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"runtime"
	"strings"
)

// PandocInstallURL is where users are sent when pandoc is missing.
const PandocInstallURL = "https://pandoc.org/installing.html"

// goos is swapped by tests to exercise platform-specific hints.
var goos = runtime.GOOS

// ForPandocNotFound returns hints for a missing pandoc binary.
// Suggests the platform package manager when one is conventional.
func ForPandocNotFound() string {
	hints := []string{"install pandoc from " + PandocInstallURL}

	switch goos {
	case "darwin":
		hints = append(hints, "or run: brew install pandoc")
	case "windows":
		hints = append(hints, "or run: winget install JohnMacFarlane.Pandoc")
	}

	hints = append(hints, "set MD2DOCX_PANDOC or --pandoc to use a custom binary")
	return formatHints(hints)
}

// ForConversionFailed returns a hint for a pandoc run that exited non-zero.
func ForConversionFailed(referenceDoc string) string {
	if referenceDoc != "" {
		return format("check that " + referenceDoc + " is a valid .docx reference document")
	}
	return format("run 'md2docx doctor' to check the pandoc installation")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-md2docx/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-md2docx") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForInvalidDocument returns a hint when the converted file cannot be reopened.
func ForInvalidDocument() string {
	return format("the converter output is not a .docx archive; rerun with --no-normalize to inspect it")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
