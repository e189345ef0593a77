package domain

// NoData is the sentinel value recorded when a field cannot be resolved.
const NoData = "no information found"

// FieldType tags a field request with its expected value shape.
type FieldType string

// Available field types.
const (
	// FieldText expects free text (names, descriptions).
	FieldText FieldType = "text"

	// FieldNumber expects a numeric-like value (revenue, ratios).
	FieldNumber FieldType = "number"
)

// IsValid returns true if the field type is recognised.
func (t FieldType) IsValid() bool {
	return t == FieldText || t == FieldNumber
}

// FieldRequest is a single named extraction target.
type FieldRequest struct {
	// Name is the field name sent to the extractor. Unique within a Template.
	Name string

	// Type hints whether the value is free text or numeric-like.
	Type FieldType
}

// Template is the caller-defined ordered set of field requests driving one
// extraction run. It is owned by the calling session, independent of any
// document.
type Template struct {
	fields []FieldRequest
}

// NewTemplate creates a template from the given requests, dropping
// duplicate names (first occurrence wins).
func NewTemplate(fields ...FieldRequest) *Template {
	t := &Template{}
	for _, f := range fields {
		t.Add(f)
	}
	return t
}

// Add appends a field request. Returns false if a field with the same name
// already exists.
func (t *Template) Add(f FieldRequest) bool {
	for _, existing := range t.fields {
		if existing.Name == f.Name {
			return false
		}
	}
	t.fields = append(t.fields, f)
	return true
}

// Remove deletes the field with the given name. Returns false if absent.
func (t *Template) Remove(name string) bool {
	for i, f := range t.fields {
		if f.Name == name {
			t.fields = append(t.fields[:i], t.fields[i+1:]...)
			return true
		}
	}
	return false
}

// Names returns the field names in template order.
func (t *Template) Names() []string {
	names := make([]string, len(t.fields))
	for i, f := range t.fields {
		names[i] = f.Name
	}
	return names
}

// Fields returns a copy of the field requests in template order.
func (t *Template) Fields() []FieldRequest {
	out := make([]FieldRequest, len(t.fields))
	copy(out, t.fields)
	return out
}

// Len returns the number of fields in the template.
func (t *Template) Len() int {
	return len(t.fields)
}

// ExtractionResult maps field names to extracted values. After extraction
// completes, every requested name has exactly one entry; unresolved fields
// carry the NoData sentinel.
type ExtractionResult map[string]string

// Merge folds newer results into r. New keys are added. An existing key is
// only replaced when its current value is the sentinel (or empty) and the
// incoming value is real - a blank or sentinel result never overwrites data.
func (r ExtractionResult) Merge(newer ExtractionResult) {
	for name, value := range newer {
		current, exists := r[name]
		if !exists {
			r[name] = value
			continue
		}
		if (current == NoData || current == "") && value != NoData && value != "" {
			r[name] = value
		}
	}
}

// Available returns the names of fields holding real (non-sentinel) values,
// in the order given by names.
func (r ExtractionResult) Available(names []string) []string {
	var out []string
	for _, n := range names {
		if v, ok := r[n]; ok && v != "" && v != NoData {
			out = append(out, n)
		}
	}
	return out
}

// Missing returns the names of fields that are absent or carry the sentinel,
// in the order given by names.
func (r ExtractionResult) Missing(names []string) []string {
	var out []string
	for _, n := range names {
		if v, ok := r[n]; !ok || v == "" || v == NoData {
			out = append(out, n)
		}
	}
	return out
}
