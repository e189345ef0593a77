package domain

import "time"

// SourceType distinguishes the primary company report from supporting material.
type SourceType string

// Available source types.
const (
	// SourceMain is the primary company report being analysed.
	SourceMain SourceType = "main"

	// SourceReference is supporting material (industry reports, competitor
	// filings) used only to ground report generation.
	SourceReference SourceType = "reference"
)

// IsValid returns true if the source type is recognised.
func (t SourceType) IsValid() bool {
	return t == SourceMain || t == SourceReference
}

// Company is the entity that owns ingested documents.
type Company struct {
	// ID is the unique identifier for the company.
	ID string

	// Name is the company name, usually taken from an extracted field.
	Name string

	// Industry is the industry classification, when extracted.
	Industry string

	// CreatedAt is when the company record was first stored.
	CreatedAt time.Time
}

// Document represents one ingested source file after parsing.
// It is immutable once stored except for accumulation of extracted fields.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// CompanyID links to the owning Company.
	CompanyID string

	// FileName is the original upload name.
	FileName string

	// SourceType marks the document as primary or reference material.
	SourceType SourceType

	// Content is the full extracted text, with page markers.
	Content string

	// PageCount is the number of pages that were parsed.
	PageCount int

	// Elements holds the structured elements returned by the document-parse
	// service, in document order. Empty when only plain text was extracted.
	Elements []Element

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// HasStructure returns true if the document carries any structured elements.
func (d *Document) HasStructure() bool {
	return len(d.Elements) > 0
}

// Tables returns the document's table elements in order.
func (d *Document) Tables() []Element {
	return d.elementsOfKind(ElementTable)
}

// Charts returns the document's chart and figure elements in order.
func (d *Document) Charts() []Element {
	return d.elementsOfKind(ElementChart)
}

// Headings returns the document's heading elements in order.
func (d *Document) Headings() []Element {
	return d.elementsOfKind(ElementHeading)
}

func (d *Document) elementsOfKind(kind ElementKind) []Element {
	var out []Element
	for _, el := range d.Elements {
		if el.Kind == kind {
			out = append(out, el)
		}
	}
	return out
}
