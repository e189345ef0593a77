package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		label string
		want  ElementKind
	}{
		{"table", ElementTable},
		{"Table", ElementTable},
		{"TABLE_CELL", ElementTable},
		{"chart", ElementChart},
		{"figure", ElementChart},
		{"Figure Caption", ElementChart},
		{"heading1", ElementHeading},
		{"title", ElementHeading},
		{"section_header", ElementHeading},
		{"list", ElementList},
		{"List Item", ElementList},
		{"paragraph", ElementParagraph},
		{"plain text", ElementParagraph},
		{"equation", ElementOther},
		{"", ElementOther},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyCategory(tt.label))
		})
	}
}

func TestElement_BestText(t *testing.T) {
	el := Element{Text: "plain", Markup: "<td>plain</td>", SemanticMarkup: "| plain |"}
	assert.Equal(t, "| plain |", el.BestText())

	el.SemanticMarkup = ""
	assert.Equal(t, "plain", el.BestText())

	el.Text = ""
	assert.Equal(t, "<td>plain</td>", el.BestText())

	el.Markup = ""
	assert.Equal(t, "", el.BestText())
}

func TestDocument_ElementAccessors(t *testing.T) {
	doc := Document{Elements: []Element{
		{Kind: ElementHeading, Text: "Overview"},
		{Kind: ElementTable, Text: "Revenue | 100"},
		{Kind: ElementParagraph, Text: "body"},
		{Kind: ElementChart, Text: "growth chart"},
		{Kind: ElementTable, Text: "Profit | 43"},
	}}

	assert.True(t, doc.HasStructure())
	assert.Len(t, doc.Tables(), 2)
	assert.Len(t, doc.Charts(), 1)
	assert.Len(t, doc.Headings(), 1)
	assert.Equal(t, "Profit | 43", doc.Tables()[1].Text)
}

func TestDocument_NoStructure(t *testing.T) {
	doc := Document{Content: "just text"}
	assert.False(t, doc.HasStructure())
	assert.Empty(t, doc.Tables())
}
