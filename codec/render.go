package codec

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/xuri/excelize/v2"

	"github.com/lexframe/lexframe/store"
)

// Renderer implements tool.DocumentRenderer: DOCX for narrative memo
// and summary documents, XLSX for tabular compliance reports.
type Renderer struct{}

// NewRenderer builds a Renderer.
func NewRenderer() *Renderer { return &Renderer{} }

const bodyPlaceholder = "{{BODY}}"

// RenderMemo produces a DOCX legal memo covering the contract's
// identity, parties, and clause-by-clause notes.
func (r *Renderer) RenderMemo(ctx context.Context, contract *store.Contract, clauses []*store.Clause) ([]byte, error) {
	var body strings.Builder
	fmt.Fprintf(&body, "Legal Memo: %s\n\n", contract.Title)
	fmt.Fprintf(&body, "Parties: %s\n\n", partyNames(contract.Parties))
	if contract.OverallRiskScore != nil {
		fmt.Fprintf(&body, "Overall risk score: %.2f\n\n", *contract.OverallRiskScore)
	}
	fmt.Fprintf(&body, "Clause notes:\n")
	for _, c := range clauses {
		note := ""
		if c.Notes != nil {
			note = *c.Notes
		}
		fmt.Fprintf(&body, "- [%s] %s\n", c.Type, note)
	}
	return renderDocxFromText(body.String())
}

// RenderSummary produces a shorter DOCX plain-language summary.
func (r *Renderer) RenderSummary(ctx context.Context, contract *store.Contract, clauses []*store.Clause) ([]byte, error) {
	var body strings.Builder
	fmt.Fprintf(&body, "Summary: %s\n\n", contract.Title)
	fmt.Fprintf(&body, "Parties: %s\n", partyNames(contract.Parties))
	fmt.Fprintf(&body, "Clauses identified: %d\n", len(clauses))
	return renderDocxFromText(body.String())
}

// RenderComplianceReport produces an XLSX workbook, one row per
// reference rule, with the rule's ID, category, severity and text. It
// does not record whether the contract's clauses cover each rule.
func (r *Renderer) RenderComplianceReport(ctx context.Context, contract *store.Contract, rules []*store.ComplianceRule) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Compliance"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("codec: create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"Rule ID", "Category", "Severity", "Text"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for i, rule := range rules {
		row := i + 2
		values := []any{rule.RuleID, rule.Category, rule.Severity, rule.Text}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("codec: write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func partyNames(parties []store.Party) string {
	names := make([]string, 0, len(parties))
	for _, p := range parties {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

// renderDocxFromText builds a minimal valid OOXML template in memory,
// stages it to a temp file (the library reads from paths, as seen in
// the teacher's docx.ReadDocxFile usage), substitutes the body
// placeholder, and returns the rendered bytes.
func renderDocxFromText(body string) ([]byte, error) {
	template, err := buildMinimalDocxTemplate()
	if err != nil {
		return nil, fmt.Errorf("codec: build docx template: %w", err)
	}

	tmpIn, err := writeTempFile("lexframe-render-in-*.docx", template)
	if err != nil {
		return nil, err
	}
	defer removeTempFile(tmpIn)

	r, err := docx.ReadDocxFile(tmpIn)
	if err != nil {
		return nil, fmt.Errorf("codec: open docx template: %w", err)
	}
	defer r.Close()

	editable := r.Editable()
	if err := editable.Replace(bodyPlaceholder, html.EscapeString(body), -1); err != nil {
		return nil, fmt.Errorf("codec: substitute docx body: %w", err)
	}

	tmpOut, err := tempFilePath("lexframe-render-out-*.docx")
	if err != nil {
		return nil, err
	}
	defer removeTempFile(tmpOut)

	if err := editable.WriteToFile(tmpOut); err != nil {
		return nil, fmt.Errorf("codec: write rendered docx: %w", err)
	}

	return os.ReadFile(tmpOut)
}

// buildMinimalDocxTemplate constructs the smallest valid OOXML package
// that Word (and this library) will open: content types, package
// relationships, and a single-paragraph document body containing the
// placeholder token renderDocxFromText replaces.
func buildMinimalDocxTemplate() ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
</Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>` + bodyPlaceholder + `</w:t></w:r></w:p>
  </w:body>
</w:document>`,
	}

	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
