package services

import "strings"

// fieldSynonyms maps lower-cased field names to the alternative labels the
// keyword fallback also scans for. The map is read-only after init; lookups
// that miss fall back to the field name alone.
var fieldSynonyms = map[string][]string{
	"company name": {"company", "corporate name", "business name"},
	"ceo":          {"chief executive officer", "chief executive", "president", "representative"},
	"founded":      {"established", "founding year", "incorporated", "year founded"},
	"industry":     {"sector", "business area", "line of business"},
	"headquarters": {"head office", "registered office", "location"},
	"employees":    {"number of employees", "headcount", "staff", "workforce"},
	"website":      {"homepage", "url"},

	"revenue":                 {"sales", "turnover", "total revenue", "net sales"},
	"operating profit":        {"operating income"},
	"operating profit margin": {"operating margin"},
	"net profit":              {"net income", "profit for the year", "net earnings"},
	"total assets":            {"assets"},
	"total liabilities":       {"liabilities"},
	"equity":                  {"shareholders' equity", "total equity"},
	"market share":            {"share of market"},
}

// synonymsFor returns the keywords to scan for when resolving a field: the
// field name itself first, then its registered synonyms.
func synonymsFor(name string) []string {
	keywords := []string{name}
	if syns, ok := fieldSynonyms[strings.ToLower(name)]; ok {
		keywords = append(keywords, syns...)
	}
	return keywords
}
