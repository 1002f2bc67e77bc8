// Package docxtest builds minimal .docx archives for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

	packageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

	documentOpen = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:m="http://schemas.openxmlformats.org/officeDocument/2006/math" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>`

	documentClose = `<w:sectPr/></w:body></w:document>`
)

// Part is one archive entry.
type Part struct {
	Name    string
	Content string
}

// DocumentXML wraps body XML in a w:document root.
func DocumentXML(body string) string {
	return documentOpen + body + documentClose
}

// Build returns a .docx archive whose main part contains body.
func Build(body string) []byte {
	return BuildParts(
		Part{"[Content_Types].xml", contentTypes},
		Part{"_rels/.rels", packageRels},
		Part{"word/document.xml", DocumentXML(body)},
		Part{"word/styles.xml", `<?xml version="1.0"?><w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"/>`},
	)
}

// BuildParts returns an archive containing exactly the given parts.
func BuildParts(parts ...Part) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.Name)
		if err != nil {
			panic(err)
		}
		if _, err := io.WriteString(w, p.Content); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Write stores a .docx built from body under dir and returns its path.
func Write(t testing.TB, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "doc.docx")
	if err := os.WriteFile(path, Build(body), 0o644); err != nil {
		t.Fatalf("writing docx: %v", err)
	}
	return path
}

// ReadPart returns the raw content of one archive entry.
func ReadPart(t testing.TB, path, name string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening %s: %v", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		return string(data)
	}
	t.Fatalf("%s not found in %s", name, path)
	return ""
}

// Table renders rows of cells. Each cell is a list of paragraph texts.
func Table(rows ...[][]string) string {
	var b strings.Builder
	b.WriteString("<w:tbl><w:tblPr/>")
	for _, row := range rows {
		b.WriteString("<w:tr>")
		for _, cell := range row {
			b.WriteString(Cell(cell...))
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString("</w:tbl>")
	return b.String()
}

// Row is shorthand for a row of single-paragraph cells.
func Row(texts ...string) [][]string {
	row := make([][]string, len(texts))
	for i, t := range texts {
		row[i] = []string{t}
	}
	return row
}

// Cell renders a w:tc with one paragraph per text.
func Cell(paragraphs ...string) string {
	var b strings.Builder
	b.WriteString("<w:tc><w:tcPr/>")
	for _, p := range paragraphs {
		b.WriteString(Paragraph(p))
	}
	b.WriteString("</w:tc>")
	return b.String()
}

// Paragraph renders a compact-style paragraph with one run per text.
func Paragraph(text string) string {
	return `<w:p><w:pPr><w:pStyle w:val="Compact"/></w:pPr>` + Run(text) + `</w:p>`
}

// Run renders a run holding text with preserved spaces.
func Run(text string) string {
	if text == "" {
		return ""
	}
	return `<w:r><w:t xml:space="preserve">` + escape(text) + `</w:t></w:r>`
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
