package migrations

import (
	"os"
	"path/filepath"
	"testing"
)

func TestListMigrationsOrdersByVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"V10__later.sql",
		"V2__second.sql",
		"V1__init.sql",
		"notes.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	migs, err := listMigrations(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := make([]string, 0, len(migs))
	for _, mig := range migs {
		got = append(got, mig.Name)
	}
	want := []string{"V1__init.sql", "V2__second.sql", "V10__later.sql"}
	if len(got) != len(want) {
		t.Fatalf("migrations = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("migrations = %v, want %v", got, want)
		}
	}
}

func TestParseVersionNumber(t *testing.T) {
	cases := []struct {
		name    string
		version int
		ok      bool
	}{
		{"V1__init.sql", 1, true},
		{"V12__add_index.sql", 12, true},
		{"V__missing.sql", 0, false},
		{"init.sql", 0, false},
		{"Vx__bad.sql", 0, false},
	}
	for _, tc := range cases {
		version, ok := parseVersionNumber(tc.name)
		if version != tc.version || ok != tc.ok {
			t.Fatalf("parseVersionNumber(%q) = %d,%v want %d,%v", tc.name, version, ok, tc.version, tc.ok)
		}
	}
}
