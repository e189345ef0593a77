package services

import "strings"

// sectionSpec pairs a report section name with the writing guideline handed
// to the model for that section.
type sectionSpec struct {
	Name      string
	Guideline string
}

// reportSections is the full section catalogue in presentation order.
// Requests may name any subset; unknown names are skipped.
var reportSections = []sectionSpec{
	{
		Name:      "Executive Summary",
		Guideline: "Summarise the company and the report's key findings in 3-5 sentences.",
	},
	{
		Name:      "Company Overview",
		Guideline: "Describe the company: identity, leadership, history, scale, and headquarters.",
	},
	{
		Name:      "Products and Services",
		Guideline: "Describe the main products and services and who buys them.",
	},
	{
		Name:      "Industry and Market Analysis",
		Guideline: "Analyse the industry the company operates in: size, growth, and structural trends.",
	},
	{
		Name:      "Competitive Landscape",
		Guideline: "Identify main competitors and assess the company's relative position.",
	},
	{
		Name:      "Financial Analysis",
		Guideline: "Analyse the available financial figures: revenue, profitability, and balance sheet items. Quote exact figures from the data; never estimate missing ones.",
	},
	{
		Name:      "SWOT Analysis",
		Guideline: "List strengths, weaknesses, opportunities, and threats as four short bullet groups.",
	},
	{
		Name:      "Growth Strategy",
		Guideline: "Assess the company's growth direction and strategic initiatives.",
	},
	{
		Name:      "Risk Factors",
		Guideline: "Identify operational, financial, and market risks relevant to the company.",
	},
	{
		Name:      "Investment Highlights",
		Guideline: "Summarise the strongest points an investor should weigh, balanced against the risks.",
	},
	{
		Name:      "Conclusion",
		Guideline: "Close with an overall assessment in 2-4 sentences.",
	},
}

// DefaultSectionNames returns the full section catalogue names in order.
func DefaultSectionNames() []string {
	names := make([]string, len(reportSections))
	for i, s := range reportSections {
		names[i] = s.Name
	}
	return names
}

// sectionByName resolves a section name case-insensitively.
func sectionByName(name string) (sectionSpec, bool) {
	for _, s := range reportSections {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, true
		}
	}
	return sectionSpec{}, false
}
