package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2docx [convert] <input.md> [output.docx] [flags]")
	fmt.Fprintln(w, "       md2docx <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert a markdown file to DOCX (default)")
	fmt.Fprintln(w, "  doctor     Check pandoc and system requirements")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2docx help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2docx convert <input.md> [output.docx] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert a markdown file to DOCX with pandoc, then normalize table cells.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input     Markdown file")
	fmt.Fprintln(w, "  output    DOCX file (default: input with .docx extension)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>        Output file (same as the output argument)")
	fmt.Fprintln(w, "  -c, --config <name>        Config file name or path")
	fmt.Fprintln(w, "      --reference-doc <path> Reference .docx controlling output styles")
	fmt.Fprintln(w, "      --pandoc <path>        Pandoc executable (default: pandoc)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Table cells:")
	fmt.Fprintln(w, "      --no-normalize         Keep cells as produced by pandoc")
	fmt.Fprintln(w, "      --formula-font <s>     Font for cells starting with \"=\" (default: Consolas)")
	fmt.Fprintln(w, "      --formula-size <n>     Formula font size in points, 1-72 (default: 10)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                Only show errors")
	fmt.Fprintln(w, "  -v, --verbose              Show timing and cell statistics")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MD2DOCX_CONFIG, MD2DOCX_PANDOC, MD2DOCX_REFERENCE_DOC, MD2DOCX_OUTPUT_DIR")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2docx doctor [--json] [--pandoc <path>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that pandoc is installed and the temp directory is writable.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: md2docx version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: md2docx help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
