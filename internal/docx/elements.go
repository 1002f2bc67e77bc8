package docx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Alignment is a paragraph justification value (w:jc/@w:val).
type Alignment string

// Alignment values written by this package.
const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Child sequences from ECMA-376 Part 1. Word rejects documents whose
// property children are out of order, so new children are inserted by rank.
var (
	paragraphOrder = []string{"pPr"}
	runOrder       = []string{"rPr"}

	pPrOrder = []string{
		"pStyle", "keepNext", "keepLines", "pageBreakBefore", "framePr",
		"widowControl", "numPr", "suppressLineNumbers", "pBdr", "shd", "tabs",
		"suppressAutoHyphens", "kinsoku", "wordWrap", "overflowPunct",
		"topLinePunct", "autoSpaceDE", "autoSpaceDN", "bidi", "adjustRightInd",
		"snapToGrid", "spacing", "ind", "contextualSpacing", "mirrorIndents",
		"suppressOverlap", "jc", "textDirection", "textAlignment",
		"textboxTightWrap", "outlineLvl", "divId", "cnfStyle", "rPr", "sectPr",
		"pPrChange",
	}

	rPrOrder = []string{
		"rStyle", "rFonts", "b", "bCs", "i", "iCs", "caps", "smallCaps",
		"strike", "dstrike", "outline", "shadow", "emboss", "imprint",
		"noProof", "snapToGrid", "vanish", "webHidden", "color", "spacing",
		"w", "kern", "position", "sz", "szCs", "highlight", "u", "effect",
		"bdr", "shd", "fitText", "vertAlign", "rtl", "cs", "em", "lang",
		"eastAsianLayout", "specVanish", "oMath", "rPrChange",
	}
)

// Table is a w:tbl element.
type Table struct {
	doc *Document
	el  *etree.Element
}

// Rows returns the table rows in order.
func (t *Table) Rows() []*Row {
	var rows []*Row
	for _, el := range t.doc.children(t.el, "tr") {
		rows = append(rows, &Row{doc: t.doc, el: el})
	}
	return rows
}

// Row is a w:tr element.
type Row struct {
	doc *Document
	el  *etree.Element
}

// Cells returns the w:tc elements of the row. A horizontally merged cell
// appears once.
func (r *Row) Cells() []*Cell {
	var cells []*Cell
	for _, el := range r.doc.children(r.el, "tc") {
		cells = append(cells, &Cell{doc: r.doc, el: el})
	}
	return cells
}

// Cell is a w:tc element.
type Cell struct {
	doc *Document
	el  *etree.Element
}

// Paragraphs returns the direct paragraphs of the cell.
func (c *Cell) Paragraphs() []*Paragraph {
	var paras []*Paragraph
	for _, el := range c.doc.children(c.el, "p") {
		paras = append(paras, &Paragraph{doc: c.doc, el: el})
	}
	return paras
}

// Text joins the paragraph texts with newlines and trims the result.
func (c *Cell) Text() string {
	paras := c.Paragraphs()
	texts := make([]string, len(paras))
	for i, p := range paras {
		texts[i] = p.Text()
	}
	return strings.TrimSpace(strings.Join(texts, "\n"))
}

// Paragraph is a w:p element.
type Paragraph struct {
	doc *Document
	el  *etree.Element
}

// Text returns the visible text of the paragraph: w:t content with tabs and
// breaks rendered as "\t" and "\n". Deleted revisions, field instructions and
// non-WordprocessingML content (OMML math, drawings) are skipped.
func (p *Paragraph) Text() string {
	var b strings.Builder
	collectText(p.el, &b)
	return b.String()
}

func collectText(el *etree.Element, b *strings.Builder) {
	for _, c := range el.ChildElements() {
		if c.NamespaceURI() != WordNamespace {
			continue
		}
		switch c.Tag {
		case "t":
			b.WriteString(c.Text())
		case "tab":
			b.WriteByte('\t')
		case "br", "cr":
			b.WriteByte('\n')
		case "noBreakHyphen":
			b.WriteByte('-')
		case "pPr", "rPr", "del", "delText", "instrText", "fldChar":
		default:
			collectText(c, b)
		}
	}
}

// Runs returns every w:r in the paragraph, including runs nested in
// hyperlinks, insertions and content controls.
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, c := range el.ChildElements() {
			if c.NamespaceURI() != WordNamespace {
				continue
			}
			switch c.Tag {
			case "r":
				runs = append(runs, &Run{doc: p.doc, el: c})
			case "pPr", "del":
			default:
				walk(c)
			}
		}
	}
	walk(p.el)
	return runs
}

// Clear removes all paragraph content except its properties (w:pPr).
func (p *Paragraph) Clear() {
	for _, tok := range append([]etree.Token(nil), p.el.Child...) {
		if el, ok := tok.(*etree.Element); ok && p.doc.is(el, "pPr") {
			continue
		}
		p.el.RemoveChild(tok)
	}
}

// SetText replaces the paragraph content with a single unformatted run
// holding s. Paragraph properties are kept.
func (p *Paragraph) SetText(s string) {
	p.Clear()
	if s == "" {
		return
	}
	r := p.doc.newElement("r")
	p.doc.writeRunText(r, s)
	p.el.AddChild(r)
}

// SetAlignment sets w:pPr/w:jc.
func (p *Paragraph) SetAlignment(a Alignment) {
	pPr := p.doc.ensureChild(p.el, "pPr", paragraphOrder)
	jc := p.doc.ensureChild(pPr, "jc", pPrOrder)
	p.doc.setAttr(jc, "val", string(a))
}

// Alignment returns the explicit paragraph alignment, or "" when inherited.
func (p *Paragraph) Alignment() Alignment {
	pPr := p.doc.child(p.el, "pPr")
	if pPr == nil {
		return ""
	}
	jc := p.doc.child(pPr, "jc")
	if jc == nil {
		return ""
	}
	return Alignment(jc.SelectAttrValue(p.doc.qname("val"), ""))
}

// Run is a w:r element.
type Run struct {
	doc *Document
	el  *etree.Element
}

// Text returns the run text.
func (r *Run) Text() string {
	var b strings.Builder
	collectText(r.el, &b)
	return b.String()
}

// SetFont sets the ASCII, high-ANSI and complex-script font of the run.
// Theme font attributes are dropped because they take precedence over
// explicit names. East Asian text keeps its inherited font.
func (r *Run) SetFont(name string) {
	rPr := r.doc.ensureChild(r.el, "rPr", runOrder)
	rFonts := r.doc.ensureChild(rPr, "rFonts", rPrOrder)
	for _, attr := range []string{"asciiTheme", "hAnsiTheme", "cstheme"} {
		r.doc.removeAttr(rFonts, attr)
	}
	for _, attr := range []string{"ascii", "hAnsi", "cs"} {
		r.doc.setAttr(rFonts, attr, name)
	}
}

// SetSize sets the run font size in points (w:sz and w:szCs, in half-points).
func (r *Run) SetSize(points int) {
	val := strconv.Itoa(points * 2)
	rPr := r.doc.ensureChild(r.el, "rPr", runOrder)
	r.doc.setAttr(r.doc.ensureChild(rPr, "sz", rPrOrder), "val", val)
	r.doc.setAttr(r.doc.ensureChild(rPr, "szCs", rPrOrder), "val", val)
}

// Font returns the run's explicit ASCII font, or "" when inherited.
func (r *Run) Font() string {
	rPr := r.doc.child(r.el, "rPr")
	if rPr == nil {
		return ""
	}
	rFonts := r.doc.child(rPr, "rFonts")
	if rFonts == nil {
		return ""
	}
	return rFonts.SelectAttrValue(r.doc.qname("ascii"), "")
}

// Size returns the run's explicit size in points, or 0 when inherited.
func (r *Run) Size() int {
	rPr := r.doc.child(r.el, "rPr")
	if rPr == nil {
		return 0
	}
	sz := r.doc.child(rPr, "sz")
	if sz == nil {
		return 0
	}
	half, err := strconv.Atoi(sz.SelectAttrValue(r.doc.qname("val"), ""))
	if err != nil {
		return 0
	}
	return half / 2
}

// child returns the first direct WordprocessingML child named local, or nil.
func (d *Document) child(el *etree.Element, local string) *etree.Element {
	for _, c := range el.ChildElements() {
		if d.is(c, local) {
			return c
		}
	}
	return nil
}

// writeRunText appends s to run r, mapping "\t" to w:tab and "\n" to w:br.
func (d *Document) writeRunText(r *etree.Element, s string) {
	var buf strings.Builder
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		t := d.newElement("t")
		text := buf.String()
		if strings.TrimSpace(text) != text {
			t.CreateAttr("xml:space", "preserve")
		}
		t.SetText(text)
		r.AddChild(t)
		buf.Reset()
	}

	for _, ch := range s {
		switch ch {
		case '\t':
			flush()
			r.AddChild(d.newElement("tab"))
		case '\n':
			flush()
			r.AddChild(d.newElement("br"))
		default:
			buf.WriteRune(ch)
		}
	}
	flush()
}
