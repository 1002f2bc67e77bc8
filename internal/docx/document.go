// Package docx edits the main document part of WordprocessingML (.docx) files.
//
// Only the structures the cell normalizer needs are modeled: body-level
// tables, their rows and cells, cell paragraphs and runs. Every other part of
// the archive is copied through untouched on save, and the main part is
// re-serialized with its namespace prefixes intact.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/beevik/etree"

	"github.com/alnah/go-md2docx/internal/fileutil"
)

// Sentinel errors for document operations.
var (
	ErrInvalidDocument  = errors.New("invalid docx document")
	ErrMainPartNotFound = errors.New("main document part not found")
)

// Namespaces and well-known part names.
const (
	WordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

	packageRelsPart = "_rels/.rels"
	defaultMainPart = "word/document.xml"

	// Transitional and strict relationship types share this suffix.
	officeDocumentRelSuffix = "/relationships/officeDocument"
)

// MaxPartSize bounds the decompressed size of the parts we parse (64MB).
var MaxPartSize int64 = 64 << 20

// Document is an opened .docx archive with its main part parsed.
type Document struct {
	path     string
	archive  *zip.Reader
	mainPart string
	xml      *etree.Document
	body     *etree.Element
	prefix   string // prefix bound to WordNamespace
}

// Open reads the .docx at path into memory and parses its main part.
// The file handle is not kept, so the same path can be overwritten by Save.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is the converter output
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	doc, err := Read(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.path = path
	return doc, nil
}

// Read parses a .docx archive held in memory.
func Read(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	d := &Document{archive: zr}

	d.mainPart, err = d.resolveMainPart()
	if err != nil {
		return nil, err
	}

	raw, err := d.readPart(d.mainPart)
	if err != nil {
		return nil, err
	}

	d.xml = etree.NewDocument()
	if err := d.xml.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidDocument, d.mainPart, err)
	}

	root := d.xml.Root()
	if root == nil || root.Tag != "document" || root.NamespaceURI() != WordNamespace {
		return nil, fmt.Errorf("%w: %s is not a WordprocessingML document", ErrInvalidDocument, d.mainPart)
	}

	d.prefix = bindPrefix(root)
	for _, c := range root.ChildElements() {
		if d.is(c, "body") {
			d.body = c
			break
		}
	}
	if d.body == nil {
		return nil, fmt.Errorf("%w: document has no body", ErrInvalidDocument)
	}

	return d, nil
}

// Path returns the path the document was opened from, if any.
func (d *Document) Path() string {
	return d.path
}

// MainPart returns the archive name of the main document part.
func (d *Document) MainPart() string {
	return d.mainPart
}

// Tables returns the body-level tables in document order.
func (d *Document) Tables() []*Table {
	var tables []*Table
	for _, el := range d.children(d.body, "tbl") {
		tables = append(tables, &Table{doc: d, el: el})
	}
	return tables
}

// Save writes the document back to the path it was opened from.
func (d *Document) Save() error {
	if d.path == "" {
		return errors.New("document has no path; use SaveAs")
	}
	return d.SaveAs(d.path)
}

// SaveAs writes the archive to path, replacing the main part with the edited
// XML. The target is replaced atomically.
func (d *Document) SaveAs(path string) error {
	return fileutil.ReplaceFile(path, d.Encode)
}

// Encode writes the full archive to w.
func (d *Document) Encode(w io.Writer) error {
	xmlBytes, err := d.xml.WriteToBytes()
	if err != nil {
		return fmt.Errorf("serializing %s: %w", d.mainPart, err)
	}

	zw := zip.NewWriter(w)
	for _, f := range d.archive.File {
		if f.Name != d.mainPart {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copying %s: %w", f.Name, err)
			}
			continue
		}

		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return fmt.Errorf("writing %s: %w", f.Name, err)
		}
		if _, err := fw.Write(xmlBytes); err != nil {
			return fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}

// resolveMainPart follows the package relationship to the main document part,
// falling back to word/document.xml when the package has no relationships part.
func (d *Document) resolveMainPart() (string, error) {
	if d.file(packageRelsPart) == nil {
		if d.file(defaultMainPart) == nil {
			return "", ErrMainPartNotFound
		}
		return defaultMainPart, nil
	}

	raw, err := d.readPart(packageRelsPart)
	if err != nil {
		return "", err
	}

	rels := etree.NewDocument()
	if err := rels.ReadFromBytes(raw); err != nil {
		return "", fmt.Errorf("%w: parsing %s: %v", ErrInvalidDocument, packageRelsPart, err)
	}
	if rels.Root() == nil {
		return "", fmt.Errorf("%w: empty %s", ErrInvalidDocument, packageRelsPart)
	}

	for _, rel := range rels.Root().ChildElements() {
		if rel.Tag != "Relationship" {
			continue
		}
		if !strings.HasSuffix(rel.SelectAttrValue("Type", ""), officeDocumentRelSuffix) {
			continue
		}
		target := strings.TrimPrefix(path.Clean("/"+rel.SelectAttrValue("Target", "")), "/")
		if d.file(target) == nil {
			return "", fmt.Errorf("%w: %s", ErrMainPartNotFound, target)
		}
		return target, nil
	}

	return "", ErrMainPartNotFound
}

// file returns the archive entry with the given name, or nil.
func (d *Document) file(name string) *zip.File {
	for _, f := range d.archive.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// readPart decompresses one archive entry, bounded by MaxPartSize.
func (d *Document) readPart(name string) ([]byte, error) {
	f := d.file(name)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrMainPartNotFound, name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrInvalidDocument, name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxPartSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidDocument, name, err)
	}
	if int64(len(data)) > MaxPartSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidDocument, name, MaxPartSize)
	}
	return data, nil
}

// bindPrefix returns the prefix mapped to WordNamespace on root, declaring
// xmlns:w when the namespace is only bound as the default namespace.
func bindPrefix(root *etree.Element) string {
	for _, a := range root.Attr {
		if a.Space == "xmlns" && a.Value == WordNamespace {
			return a.Key
		}
	}
	root.CreateAttr("xmlns:w", WordNamespace)
	return "w"
}

// is reports whether el is the WordprocessingML element with the given local name.
func (d *Document) is(el *etree.Element, local string) bool {
	return el.Tag == local && el.NamespaceURI() == WordNamespace
}

// children returns the direct WordprocessingML children of el named local.
func (d *Document) children(el *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if d.is(c, local) {
			out = append(out, c)
		}
	}
	return out
}

// qname prefixes a local name with the WordprocessingML prefix.
func (d *Document) qname(local string) string {
	return d.prefix + ":" + local
}

// newElement creates a detached WordprocessingML element.
func (d *Document) newElement(local string) *etree.Element {
	return etree.NewElement(d.qname(local))
}

// ensureChild returns the child of parent named local, creating it at the
// position the schema sequence order requires when it is missing.
// Children outside order (including foreign namespaces) sort last.
func (d *Document) ensureChild(parent *etree.Element, local string, order []string) *etree.Element {
	for _, c := range parent.ChildElements() {
		if d.is(c, local) {
			return c
		}
	}

	el := d.newElement(local)
	want := rank(order, local)
	for _, c := range parent.ChildElements() {
		r := len(order)
		if c.NamespaceURI() == WordNamespace {
			r = rank(order, c.Tag)
		}
		if r > want {
			parent.InsertChildAt(c.Index(), el)
			return el
		}
	}
	parent.AddChild(el)
	return el
}

// setAttr sets a w:-qualified attribute, replacing any existing value.
func (d *Document) setAttr(el *etree.Element, local, value string) {
	el.CreateAttr(d.qname(local), value)
}

// removeAttr deletes a w:-qualified attribute if present.
func (d *Document) removeAttr(el *etree.Element, local string) {
	el.RemoveAttr(d.qname(local))
}

// rank returns the position of local in order, or len(order) when absent.
func rank(order []string, local string) int {
	for i, name := range order {
		if name == local {
			return i
		}
	}
	return len(order)
}
