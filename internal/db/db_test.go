package db

import (
	"path/filepath"
	"testing"

	"github.com/suPer8Hu/diy-assistant/internal/models"
	"github.com/suPer8Hu/diy-assistant/internal/project"
)

func TestSQLiteDSN(t *testing.T) {
	cases := map[string]string{
		"app.db":                         "app.db?_pragma=foreign_keys(1)",
		"file:x?mode=memory":             "file:x?mode=memory&_pragma=foreign_keys(1)",
		"a.db?_pragma=journal_mode(WAL)": "a.db?_pragma=journal_mode(WAL)",
	}
	for in, want := range cases {
		if got := SQLiteDSN(in); got != want {
			t.Fatalf("SQLiteDSN(%q)=%q want %q", in, got, want)
		}
	}
}

func TestDialector_Unsupported(t *testing.T) {
	if _, err := Dialector("postgres", "x"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
	if _, err := Dialector("mysql", "app:pw@tcp(127.0.0.1:3306)/diy"); err != nil {
		t.Fatalf("mysql dialector: %v", err)
	}
}

func TestConnectAndMigrate_SQLite(t *testing.T) {
	gdb, err := Connect("sqlite", filepath.Join(t.TempDir(), "diy.db"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, m := range []any{&models.User{}, &project.Project{}, &project.Step{}, &project.Material{}} {
		if !gdb.Migrator().HasTable(m) {
			t.Fatalf("expected table for %T", m)
		}
	}
}
