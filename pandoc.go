package md2docx

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/alnah/go-md2docx/internal/process"
)

// Markdown dialect handed to pandoc: GitHub-flavored pipe tables, $...$ math
// and raw HTML passthrough.
const pandocInputFormat = "gfm+tex_math_dollars+raw_html"

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
// Cancelling ctx kills the command and its children.
type ExecRunner struct{}

// LookPath implements CommandRunner.
func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run implements CommandRunner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- pandoc path comes from flags/config
	process.Configure(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return stdout.String(), stderr.String(), err
}

// PandocArgs returns the pandoc argument vector converting input to a .docx
// at output. referenceDoc and resourceDir are optional.
func PandocArgs(input, output, referenceDoc, resourceDir string) []string {
	args := []string{
		"--from", pandocInputFormat,
		"--to", "docx",
		"--output", output,
		"--wrap=none",
		"--columns=999",
		"-M", "east_asian_line_breaks=true",
		"--embed-resources",
	}
	if referenceDoc != "" {
		args = append(args, "--reference-doc", referenceDoc)
	}
	if resourceDir != "" {
		args = append(args, "--resource-path", resourceDir)
	}
	return append(args, input)
}
