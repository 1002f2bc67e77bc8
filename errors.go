package md2docx

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyInputPath = errors.New("input path cannot be empty")
	ErrInputNotFound  = errors.New("input file not found")
	ErrPandocNotFound = errors.New("pandoc not found")
	ErrConversion     = errors.New("pandoc conversion failed")

	// I/O around the pandoc step.
	ErrReadMarkdown = errors.New("reading markdown failed")
	ErrNormalize    = errors.New("normalizing table cells failed")

	// Input validation errors.
	ErrInvalidOutputPath   = errors.New("invalid output path")
	ErrReferenceDocMissing = errors.New("reference document not found")
)
