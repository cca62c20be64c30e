package schema

import (
	"bytes"
	"errors"
	"testing"

	"github.com/thanhfphan/codecrafters-sqlite-go/internal/dberr"
	"github.com/thanhfphan/codecrafters-sqlite-go/internal/page"
	"github.com/thanhfphan/codecrafters-sqlite-go/internal/testdb"
)

const applesSQL = "CREATE TABLE apples\n(\n\tid integer primary key autoincrement,\n\tname text,\n\tcolor text\n)"

func catalogFor(t *testing.T, b *testdb.Builder) *Catalog {
	t.Helper()
	raw := b.Bytes()
	pages := page.NewReader(bytes.NewReader(raw), testdb.DefaultPageSize, testdb.DefaultPageSize)
	return New(pages, page.ModeTree)
}

func sampleCatalog(t *testing.T) *Catalog {
	b := testdb.New(testdb.DefaultPageSize)
	b.Table("apples", b.Leaf(), applesSQL)
	b.Table("sqlite_sequence", b.Leaf(), "CREATE TABLE sqlite_sequence(name,seq)")
	b.Schema("index", "idx_apples_name", "apples", b.Leaf(), "CREATE INDEX idx_apples_name on apples (name)")
	b.Table("oranges", b.Leaf(), "CREATE TABLE oranges (id integer primary key, name text)")
	b.Schema("view", "red_apples", "red_apples", 0, "CREATE VIEW red_apples AS SELECT name FROM apples")
	return catalogFor(t, b)
}

func TestRows(t *testing.T) {
	rows, err := sampleCatalog(t).Rows()
	if err != nil {
		t.Fatal(err)
	}

	want := []Row{
		{RowID: 1, Type: "table", Name: "apples", TblName: "apples", RootPage: 2, SQL: applesSQL},
		{RowID: 2, Type: "table", Name: "sqlite_sequence", TblName: "sqlite_sequence", RootPage: 3, SQL: "CREATE TABLE sqlite_sequence(name,seq)"},
		{RowID: 3, Type: "index", Name: "idx_apples_name", TblName: "apples", RootPage: 4, SQL: "CREATE INDEX idx_apples_name on apples (name)"},
		{RowID: 4, Type: "table", Name: "oranges", TblName: "oranges", RootPage: 5, SQL: "CREATE TABLE oranges (id integer primary key, name text)"},
		{RowID: 5, Type: "view", Name: "red_apples", TblName: "red_apples", RootPage: 0, SQL: "CREATE VIEW red_apples AS SELECT name FROM apples"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestFindTable(t *testing.T) {
	c := sampleCatalog(t)

	tests := []struct {
		name     string
		lookup   string
		wantRoot uint32
		wantErr  error
	}{
		{"exact", "apples", 2, nil},
		{"case folded", "APPLES", 2, nil},
		{"surrounding space", "  oranges ", 5, nil},
		{"index is not a table", "idx_apples_name", 0, dberr.ErrTableNotFound},
		{"view is not a table", "red_apples", 0, dberr.ErrTableNotFound},
		{"missing", "pears", 0, dberr.ErrTableNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := c.FindTable(tt.lookup)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("FindTable(%q) error = %v, want %v", tt.lookup, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if tbl.RootPage != tt.wantRoot {
				t.Errorf("root page = %d, want %d", tbl.RootPage, tt.wantRoot)
			}
		})
	}
}

func TestFindTableFirstMatchWins(t *testing.T) {
	b := testdb.New(testdb.DefaultPageSize)
	b.Table("dup", b.Leaf(), "CREATE TABLE dup (a)")
	b.Table("DUP", b.Leaf(), "CREATE TABLE DUP (b)")
	c := catalogFor(t, b)

	tbl, err := c.FindTable("dup")
	if err != nil {
		t.Fatal(err)
	}
	if tbl.RootPage != 2 || tbl.SQL != "CREATE TABLE dup (a)" {
		t.Errorf("FindTable() = %+v, want the first row", tbl)
	}
}

func TestFindTableSkipsNonTableRows(t *testing.T) {
	b := testdb.New(testdb.DefaultPageSize)
	idx := b.Leaf()
	b.Schema("index", "idx_apples_color", "apples", idx, "CREATE INDEX idx_apples_color ON apples (color)")
	b.Schema("trigger", "apples_audit", "apples", 0, "CREATE TRIGGER apples_audit AFTER INSERT ON apples BEGIN SELECT 1; END")
	root := b.Leaf()
	b.Table("apples", root, applesSQL)
	b.Schema("view", "fruit", "fruit", 0, "CREATE VIEW fruit AS SELECT name FROM apples")
	c := catalogFor(t, b)

	// The index and trigger share tbl_name with the table and come first.
	tbl, err := c.FindTable("apples")
	if err != nil {
		t.Fatal(err)
	}
	if tbl.RootPage != root || tbl.SQL != applesSQL {
		t.Errorf("FindTable(apples) = %+v, want root %d (index root is %d)", tbl, root, idx)
	}

	if _, err := c.FindTable("fruit"); !errors.Is(err, dberr.ErrTableNotFound) {
		t.Errorf("FindTable(fruit) error = %v, want ErrTableNotFound", err)
	}
}

func TestFindTableNotFoundMessage(t *testing.T) {
	_, err := sampleCatalog(t).FindTable("pears")
	var nf *dberr.NotFoundError
	if !errors.As(err, &nf) || nf.ID != "pears" {
		t.Fatalf("error = %v, want NotFoundError for pears", err)
	}
	if err.Error() != "table not found: pears" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestRowsEmptySchema(t *testing.T) {
	rows, err := catalogFor(t, testdb.New(testdb.DefaultPageSize)).Rows()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows from an empty schema", len(rows))
	}
}
