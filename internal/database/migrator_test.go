package database

import "testing"

func TestPending(t *testing.T) {
	names := []string{"002_invoices.sql", "README.md", "001_initial_schema.sql", "999_reset_all.sql", "003_prefs.sql"}
	applied := map[string]bool{"002_invoices.sql": true}

	got := pending(names, applied)
	want := []string{"001_initial_schema.sql", "003_prefs.sql"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}
