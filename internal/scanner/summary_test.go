package scanner

import "testing"

func TestSummaries(t *testing.T) {
	finds := []Find{
		{Path: "/a", ModuleSize: 3000, ProjectSize: 3600},
		{Path: "/a/b", ModuleSize: 0, ProjectSize: 100},
	}

	sums := Summaries(finds)
	if len(sums) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(sums))
	}
	if sums[0].ID != "projects" || sums[0].Size != 700 || sums[0].Label != "Projects" {
		t.Errorf("projects summary = %+v", sums[0])
	}
	if sums[1].ID != "node_modules" || sums[1].Size != 3000 || sums[1].Label != "node_modules" {
		t.Errorf("node_modules summary = %+v", sums[1])
	}
}

func TestSummaries_Empty(t *testing.T) {
	sums := Summaries(nil)
	if len(sums) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(sums))
	}
	if sums[0].Size != 0 || sums[1].Size != 0 {
		t.Errorf("expected zero sizes, got %+v", sums)
	}
}

func TestModulesAndProjectsSize(t *testing.T) {
	finds := []Find{
		{ModuleSize: 10, ProjectSize: 15},
		{ModuleSize: 5, ProjectSize: 50},
	}
	if got := ModulesSize(finds); got != 15 {
		t.Errorf("ModulesSize = %d, want 15", got)
	}
	if got := ProjectsSize(finds); got != 65 {
		t.Errorf("ProjectsSize = %d, want 65", got)
	}
}
