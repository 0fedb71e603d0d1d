package catalog

import "testing"

func TestDefault_Loads(t *testing.T) {
	c := Default()
	if len(c.Categories) != 10 {
		t.Fatalf("expected 10 categories, got %d", len(c.Categories))
	}
	if !c.HasCategory("Supervisión") {
		t.Fatalf("expected Supervisión to be a category")
	}
	if !c.HasSpecialty("Ingeniería Civil") {
		t.Fatalf("expected Ingeniería Civil to be a specialty")
	}
	if c.HasSpecialty("Astrología") {
		t.Fatalf("unexpected specialty")
	}
}

func TestParse_RequiresBothLists(t *testing.T) {
	if _, err := Parse([]byte("categories: [a]\n")); err == nil {
		t.Fatalf("expected error for missing specialties")
	}
	if _, err := Parse([]byte(":::")); err == nil {
		t.Fatalf("expected error for invalid yaml")
	}
}
