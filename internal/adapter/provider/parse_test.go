package provider

import (
	"reflect"
	"testing"
)

func TestParseQueryVariants(t *testing.T) {
	raw := `Here are the rewordings:
- What is photosynthesis?
* How do plants convert light to energy?
1. "Explain the photosynthetic process"

2) What happens during photosynthesis?`

	got := parseQueryVariants(raw, 3)
	want := []string{
		"What is photosynthesis?",
		"How do plants convert light to energy?",
		"Explain the photosynthetic process",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseQueryVariants = %v, want %v", got, want)
	}
}

func TestParseQueryVariantsNoCap(t *testing.T) {
	got := parseQueryVariants("a?\nb?\nc?", 0)
	if len(got) != 3 {
		t.Errorf("expected 3 variants without cap, got %d", len(got))
	}
}

func TestParseQueryVariantsEmpty(t *testing.T) {
	if got := parseQueryVariants("\n\n  \n", 3); len(got) != 0 {
		t.Errorf("expected no variants from blank output, got %v", got)
	}
}

func TestParseMetadata(t *testing.T) {
	raw := "```\ntopic: cell biology\nentities: mitochondria, ATP, chloroplast\nsection_title: Energy Production\n```"

	got := parseMetadata(raw)
	if got.Topic != "cell biology" {
		t.Errorf("topic = %q", got.Topic)
	}
	if !reflect.DeepEqual(got.Entities, []string{"mitochondria", "ATP", "chloroplast"}) {
		t.Errorf("entities = %v", got.Entities)
	}
	if got.SectionTitle != "Energy Production" {
		t.Errorf("section_title = %q", got.SectionTitle)
	}
}

func TestParseMetadataNoneValues(t *testing.T) {
	got := parseMetadata("topic: none\nentities: NULL\nsection_title:")
	if got.Topic != "" || got.Entities != nil || got.SectionTitle != "" {
		t.Errorf("expected empty record, got %+v", got)
	}
}

func TestParseMetadataGarbage(t *testing.T) {
	// Unparseable model output degrades to the empty record, never an error.
	got := parseMetadata("{'topic' 'x' __import__('os')}")
	if got.Topic != "" || got.Entities != nil || got.SectionTitle != "" {
		t.Errorf("expected empty record from garbage, got %+v", got)
	}
}
