package docstore

import "testing"

func TestMergeDocuments(t *testing.T) {
	base := Document{"a": 1.0, "b": 2.0}
	overlay := Document{"b": 3.0, "c": 4.0}

	out := MergeDocuments(base, overlay)
	if out["a"] != 1.0 || out["b"] != 3.0 || out["c"] != 4.0 {
		t.Errorf("merge = %v", out)
	}
	// Inputs stay untouched.
	if base["b"] != 2.0 {
		t.Errorf("base mutated: %v", base)
	}
}

func TestPaths(t *testing.T) {
	p := Paths{AppID: "app", UserID: "u1"}

	tests := []struct {
		got  string
		want string
	}{
		{p.BudgetsCollection(), "artifacts/app/users/u1/budgets"},
		{p.Budget("b1"), "artifacts/app/users/u1/budgets/b1"},
		{p.ArchiveCollection("b1"), "artifacts/app/users/u1/budgets/b1/archive"},
		{p.Archive("b1", "2026-04"), "artifacts/app/users/u1/budgets/b1/archive/2026-04"},
		{p.Preferences(), "artifacts/app/users/u1/preferences/userPrefs"},
		{p.LegacyBudget(), "artifacts/app/users/u1/budget/current"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("path = %q, want %q", tt.got, tt.want)
		}
	}
}
