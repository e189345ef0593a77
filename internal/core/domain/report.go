package domain

import (
	"regexp"
	"strings"
	"time"
)

// Provenance tags form a closed taxonomy. Every sentence of an assembled
// report is expected to carry exactly one of these markers indicating where
// its content came from. The tags are enforced by model instruction; see
// UntaggedSentences for the advisory post-hoc check.
const (
	// TagPrimary marks content taken directly from the main document.
	TagPrimary = "[source: main document]"

	// TagReferencePrefix marks content from a named reference document.
	// The full tag is "[source: reference - <filename>]".
	TagReferencePrefix = "[source: reference"

	// TagInference marks analytical inference derived from the main document.
	TagInference = "[analysis: derived from main document]"

	// TagBackground marks general background knowledge; it includes the
	// model's knowledge-cutoff disclosure.
	TagBackground = "[source: model background knowledge"

	// TagSynthesis marks judgment combining document data and background
	// knowledge.
	TagSynthesis = "[analysis: combined judgment]"
)

// Report is the assembled analysis document. Immutable once returned;
// downstream formatting and export are out of scope.
type Report struct {
	// ID is the unique identifier for the stored report.
	ID string

	// CompanyID links to the company the report describes. Empty when the
	// report was assembled without a storage scope.
	CompanyID string

	// Sections lists the section names that were requested and recognised,
	// in order.
	Sections []string

	// Content is the assembled markdown text.
	Content string

	// CreatedAt is when the report was assembled.
	CreatedAt time.Time
}

// tagPattern matches any provenance tag from the closed taxonomy.
var tagPattern = regexp.MustCompile(`\[(source|analysis):[^\]]*\]`)

// UntaggedSentences returns report sentences that carry no provenance tag.
// Headings, list markers shorter than a sentence, and blank lines are
// ignored. This is an advisory check: tagging is enforced by instruction,
// not mechanically, so untagged sentences are flagged rather than rejected.
func (r *Report) UntaggedSentences() []string {
	var untagged []string
	for _, line := range strings.Split(r.Content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "* ")
		if len([]rune(line)) < 20 {
			continue
		}
		if !tagPattern.MatchString(line) {
			untagged = append(untagged, line)
		}
	}
	return untagged
}
