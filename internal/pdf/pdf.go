// Package pdf renders record summaries as PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// Field is one label/value line.
type Field struct {
	Label string
	Value string
}

// Section groups fields under a heading.
type Section struct {
	Heading string
	Fields  []Field
}

// Document is the renderer input.
type Document struct {
	Title       string
	Subtitle    string
	Sections    []Section
	GeneratedAt time.Time
	GeneratedBy string
}

// Renderer renders documents to A4 PDFs.
type Renderer struct {
	fontPath string
	loc      *time.Location
}

// NewRenderer creates a renderer. With an empty fontPath the built-in
// Helvetica is used, which cannot draw Arabic script.
func NewRenderer(fontPath string, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{fontPath: fontPath, loc: loc}
}

const (
	family     = "body"
	labelWidth = 60.0
	lineHeight = 7.0
)

// Render returns the PDF bytes of doc.
func (r *Renderer) Render(doc Document) ([]byte, error) {
	p := fpdf.New("P", "mm", "A4", "")
	p.SetTitle(doc.Title, true)
	p.SetCreator("wathq-services", true)

	font := "Helvetica"
	tr := p.UnicodeTranslatorFromDescriptor("")
	if r.fontPath != "" {
		p.AddUTF8Font(family, "", r.fontPath)
		p.AddUTF8Font(family, "B", r.fontPath)
		font = family
		tr = func(s string) string { return s }
	}

	generated := doc.GeneratedAt.In(r.loc).Format("2006-01-02 15:04 MST")
	p.SetFooterFunc(func() {
		p.SetY(-15)
		p.SetFont(font, "", 8)
		p.SetTextColor(120, 120, 120)
		p.CellFormat(0, 10, tr(fmt.Sprintf("Generated %s by %s  |  page %d", generated, doc.GeneratedBy, p.PageNo())), "", 0, "C", false, 0, "")
	})

	p.AddPage()
	p.SetFont(font, "B", 16)
	p.CellFormat(0, 10, tr(doc.Title), "", 1, "L", false, 0, "")
	if doc.Subtitle != "" {
		p.SetFont(font, "", 11)
		p.SetTextColor(90, 90, 90)
		p.CellFormat(0, lineHeight, tr(doc.Subtitle), "", 1, "L", false, 0, "")
		p.SetTextColor(0, 0, 0)
	}
	p.Ln(4)

	for _, sec := range doc.Sections {
		p.SetFont(font, "B", 12)
		p.SetFillColor(230, 236, 242)
		p.CellFormat(0, 8, tr(sec.Heading), "", 1, "L", true, 0, "")
		p.Ln(1)
		for _, f := range sec.Fields {
			value := f.Value
			if value == "" {
				value = "-"
			}
			p.SetFont(font, "B", 10)
			p.CellFormat(labelWidth, lineHeight, tr(f.Label), "", 0, "L", false, 0, "")
			p.SetFont(font, "", 10)
			p.MultiCell(0, lineHeight, tr(value), "", "L", false)
		}
		p.Ln(3)
	}

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
