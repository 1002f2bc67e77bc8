package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// formulaFlags holds formula cell styling flags.
type formulaFlags struct {
	font string
	size int
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common       commonFlags
	output       string
	referenceDoc string
	pandoc       string
	noNormalize  bool
	formula      formulaFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show timing and cell statistics")
}

// addFormulaFlags adds formula styling flags to a FlagSet.
func addFormulaFlags(fs *flag.FlagSet, f *formulaFlags) {
	fs.StringVar(&f.font, "formula-font", "", "font for cells starting with \"=\" (default: Consolas)")
	fs.IntVar(&f.size, "formula-size", 0, "font size in points for formula cells (default: 10)")
}

// parseConvertFlags parses convert command flags and returns positional args.
// --help prints usage to the given writer and returns flag.ErrHelp; other
// errors are left for the caller to report.
func parseConvertFlags(args []string, usage io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output .docx path")
	fs.StringVar(&f.referenceDoc, "reference-doc", "", "reference .docx controlling output styles")
	fs.StringVar(&f.pandoc, "pandoc", "", "pandoc executable name or path")
	fs.BoolVar(&f.noNormalize, "no-normalize", false, "keep table cells as produced by pandoc")

	addCommonFlags(fs, &f.common)
	addFormulaFlags(fs, &f.formula)

	fs.Usage = func() { printConvertUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// hasVerboseFlag reports whether -v or --verbose appears before any "--".
// Used before full parsing to configure startup logging.
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		switch a {
		case "--":
			return false
		case "-v", "--verbose":
			return true
		}
	}
	return false
}
