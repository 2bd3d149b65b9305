package migrations

import (
	"io/fs"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	input := `-- header comment
CREATE TABLE a (x Int64);

-- second
CREATE TABLE b (y String)
ENGINE = MergeTree() ORDER BY y;
`
	stmts := splitStatements(input)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if stmts[0] != "CREATE TABLE a (x Int64)" {
		t.Errorf("unexpected first statement: %q", stmts[0])
	}
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	if err := validateNoSemicolonInStrings("SELECT 'it''s fine'"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := validateNoSemicolonInStrings("SELECT 'a;b'"); err == nil {
		t.Error("expected error for semicolon inside string literal")
	}
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://localhost:9000/journal")
	if err != nil || db != "journal" {
		t.Errorf("got %q, %v", db, err)
	}
	if _, err := databaseFromDSN("clickhouse://localhost:9000"); err == nil {
		t.Error("expected error for missing database")
	}
}

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	for name, fsys := range map[string]fs.FS{"postgres": PostgresFS, "clickhouse": ClickhouseFS} {
		entries, err := fs.ReadDir(fsys, name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if len(entries) == 0 {
			t.Errorf("no %s migrations embedded", name)
		}
		for _, e := range entries {
			data, err := fs.ReadFile(fsys, name+"/"+e.Name())
			if err != nil {
				t.Fatalf("read %s: %v", e.Name(), err)
			}
			if err := validateNoSemicolonInStrings(string(data)); err != nil {
				t.Errorf("%s: %v", e.Name(), err)
			}
		}
	}
}
