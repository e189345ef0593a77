package pdftext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractText_InvalidData(t *testing.T) {
	extractor := New()

	_, _, err := extractor.ExtractText(context.Background(), []byte("not a pdf"), 5)
	assert.Error(t, err)
}

func TestExtractText_EmptyData(t *testing.T) {
	extractor := New()

	_, _, err := extractor.ExtractText(context.Background(), nil, 5)
	assert.Error(t, err)
}

func TestPageCount_InvalidData(t *testing.T) {
	extractor := New()

	_, err := extractor.PageCount([]byte{0x00, 0x01})
	assert.Error(t, err)
}
