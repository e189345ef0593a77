package domain

import "strings"

// ElementKind categorises a structured element from the document-parse service.
type ElementKind string

// Element categories.
const (
	ElementTable     ElementKind = "table"
	ElementChart     ElementKind = "chart"
	ElementHeading   ElementKind = "heading"
	ElementParagraph ElementKind = "paragraph"
	ElementList      ElementKind = "list"
	ElementOther     ElementKind = "other"
)

// Element is a page-attributed document substructure with up to three
// textual representations. Representations that the parse service did not
// produce are empty strings.
type Element struct {
	// Kind is the classified category.
	Kind ElementKind

	// Category is the raw label reported by the parse service.
	Category string

	// Page is the 1-based page number the element appeared on.
	Page int

	// Text is the plain-text representation.
	Text string

	// Markup is the markup (HTML) representation.
	Markup string

	// SemanticMarkup is the semantic markup (Markdown) representation.
	SemanticMarkup string
}

// ClassifyCategory maps a parse-service category label to an ElementKind
// using case-insensitive substring matching. Unrecognised labels map to
// ElementOther.
func ClassifyCategory(label string) ElementKind {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "table"):
		return ElementTable
	case strings.Contains(l, "chart"), strings.Contains(l, "figure"):
		return ElementChart
	case strings.Contains(l, "heading"), strings.Contains(l, "title"), strings.Contains(l, "header"):
		return ElementHeading
	case strings.Contains(l, "list"):
		return ElementList
	case strings.Contains(l, "paragraph"), strings.Contains(l, "text"):
		return ElementParagraph
	default:
		return ElementOther
	}
}

// BestText returns the preferred textual representation for prompting:
// semantic markup first, then plain text, then markup. Returns the empty
// string when the element carries no text at all.
func (e Element) BestText() string {
	if e.SemanticMarkup != "" {
		return e.SemanticMarkup
	}
	if e.Text != "" {
		return e.Text
	}
	return e.Markup
}
