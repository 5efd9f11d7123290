// Package taxonomytest provides a small, realistic ESG taxonomy for tests.
package taxonomytest

import (
	"testing"

	"github.com/steveyegge/esgmatch/internal/taxonomy"
)

// Records returns the fixture taxonomy rows in source order.
// Pillars appear Environmental, Social, Governance; issues in first-seen order.
func Records() []taxonomy.Record {
	return []taxonomy.Record{
		{FieldID: "ENV000", FieldName: "Environmental Pillar Score", FieldType: "Pillar", Pillar: "Environmental"},
		{FieldID: "ENV001", FieldName: "Total Water Withdrawal", FieldType: "Field", Pillar: "Environmental", Issue: "Water Management", SubIssue: "Water Consumption"},
		{FieldID: "ENV002", FieldName: "Water Stress Areas", FieldType: "Field", Pillar: "Environmental", Issue: "Water Management", SubIssue: "Water Stress"},
		{FieldID: "ENV003", FieldName: "Wastewater Discharge", FieldType: "Field", Pillar: "Environmental", Issue: "Water Management", SubIssue: "Water Pollution"},
		{FieldID: "ENV010", FieldName: "Carbon Monoxide", FieldType: "Field", Pillar: "Environmental", Issue: "Air Quality", SubIssue: "Air Emissions"},
		{FieldID: "ENV011", FieldName: "Nitrogen Oxides", FieldType: "Field", Pillar: "Environmental", Issue: "Air Quality", SubIssue: "Air Emissions"},
		{FieldID: "ENV020", FieldName: "Scope 1 GHG Emissions", FieldType: "Field", Pillar: "Environmental", Issue: "Climate Change", SubIssue: "GHG Emissions"},
		{FieldID: "ENV021", FieldName: "Scope 2 GHG Emissions", FieldType: "Field", Pillar: "Environmental", Issue: "Climate Change", SubIssue: "GHG Emissions"},
		{FieldID: "ENV030", FieldName: "Renewable Energy Consumption", FieldType: "Field", Pillar: "Environmental", Issue: "Energy Management", SubIssue: "Energy Use"},
		{FieldID: "ENV040", FieldName: "Hazardous Waste Generated", FieldType: "Field", Pillar: "Environmental", Issue: "Waste & Hazardous Materials", SubIssue: "Hazardous Waste"},
		{FieldID: "ENV050", FieldName: "Operations Near Protected Habitat", FieldType: "Field", Pillar: "Environmental", Issue: "Biodiversity", SubIssue: "Land Use", UnderlyingFieldID: "ENV051"},
		{FieldID: "SOC001", FieldName: "Employee Diversity Ratio", FieldType: "Field", Pillar: "Social", Issue: "Human Capital", SubIssue: "Diversity & Inclusion"},
		{FieldID: "SOC002", FieldName: "Lost Time Injury Rate", FieldType: "Field", Pillar: "Social", Issue: "Human Capital", SubIssue: "Health & Safety"},
		{FieldID: "SOC010", FieldName: "Product Recalls", FieldType: "Field", Pillar: "Social", Issue: "Product Safety"},
		{FieldID: "GOV001", FieldName: "Board Independence", FieldType: "Field", Pillar: "Governance", Issue: "Board Structure", SubIssue: "Independence"},
		{FieldID: "GOV010", FieldName: "Anti-Corruption Policy", FieldType: "Field", Pillar: "Governance", Issue: "Business Ethics", SubIssue: "Corruption"},
	}
}

// Index loads Records into an index and fails the test on error.
func Index(t testing.TB) *taxonomy.Index {
	t.Helper()
	idx, err := taxonomy.Load(Records(), taxonomy.WithVersion("test"), taxonomy.WithSource("fixture"))
	if err != nil {
		t.Fatalf("failed to load fixture taxonomy: %v", err)
	}
	return idx
}
