package main

import (
	"io"
	"os"

	md2docx "github.com/alnah/go-md2docx"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer
	Runner md2docx.CommandRunner // locates and runs pandoc
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Runner: md2docx.ExecRunner{},
	}
}

// runner returns the configured runner, falling back to os/exec.
func (e *Environment) runner() md2docx.CommandRunner {
	if e.Runner == nil {
		return md2docx.ExecRunner{}
	}
	return e.Runner
}
