package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-md2docx/internal/config"
)

// Oldest pandoc accepting --embed-resources.
const (
	minPandocMajor = 2
	minPandocMinor = 19
)

var pandocVersionPattern = regexp.MustCompile(`(\d+)\.(\d+)`)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Pandoc   pandocInfo `json:"pandoc"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// pandocInfo holds pandoc detection results.
type pandocInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS           string `json:"os"`
	Arch         string `json:"arch"`
	CI           bool   `json:"ci"`
	PandocEnv    string `json:"md2docx_pandoc,omitempty"`
	ReferenceDoc string `json:"md2docx_reference_doc,omitempty"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	jsonOutput := fs.Bool("json", false, "print results as JSON")
	pandocPath := fs.String("pandoc", "", "pandoc executable name or path")
	fs.Usage = func() { printDoctorUsage(env.Stdout) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "Error: %v\n", err)
		return ExitUsage
	}

	result := runDoctor(ctx, env, *pandocPath)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, env *Environment, pandocPath string) *doctorResult {
	envCfg := loadEnvConfig()
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:           runtime.GOOS,
			Arch:         runtime.GOARCH,
			PandocEnv:    envCfg.PandocPath,
			ReferenceDoc: envCfg.ReferenceDoc,
		},
	}

	if pandocPath == "" {
		pandocPath = envCfg.PandocPath
	}
	if pandocPath == "" {
		pandocPath = config.DefaultPandocPath
	}

	checkPandoc(ctx, env, pandocPath, result)
	checkEnvironment(result)
	checkSystem(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkPandoc locates pandoc and reads its version.
func checkPandoc(ctx context.Context, env *Environment, name string, result *doctorResult) {
	runner := env.runner()

	path, err := runner.LookPath(name)
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("pandoc not found (%s). Install from https://pandoc.org/installing.html or set MD2DOCX_PANDOC", name))
		return
	}
	result.Pandoc.Found = true
	result.Pandoc.Path = path

	stdout, _, err := runner.Run(ctx, path, "--version")
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get pandoc version: %v", err))
		return
	}
	result.Pandoc.Version = strings.TrimSpace(strings.SplitN(stdout, "\n", 2)[0])

	if old, ok := isOldPandoc(result.Pandoc.Version); ok && old {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("pandoc %d.%d or newer is required for --embed-resources, found %q",
				minPandocMajor, minPandocMinor, result.Pandoc.Version))
	}
}

// isOldPandoc reports whether version predates the minimum supported release.
// ok is false when no version number can be parsed.
func isOldPandoc(version string) (old, ok bool) {
	m := pandocVersionPattern.FindStringSubmatch(version)
	if m == nil {
		return false, false
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	if major != minPandocMajor {
		return major < minPandocMajor, true
	}
	return minor < minPandocMinor, true
}

// checkEnvironment detects CI environments and dangling env references.
func checkEnvironment(result *doctorResult) {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if ref := result.Env.ReferenceDoc; ref != "" {
		if _, err := os.Stat(ref); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("MD2DOCX_REFERENCE_DOC points to a missing file: %s", ref))
		}
	}
}

// checkSystem verifies system requirements.
func checkSystem(result *doctorResult) {
	// Preprocessed markdown is written to the temp directory
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "md2docx-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "md2docx doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Pandoc")
	if r.Pandoc.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Pandoc.Path)
		if r.Pandoc.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Pandoc.Version)
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	if r.Env.PandocEnv != "" {
		fmt.Fprintf(w, "  [OK] MD2DOCX_PANDOC: %s\n", r.Env.PandocEnv)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", e)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
