package query

import (
	"errors"
	"reflect"
	"testing"

	"github.com/thanhfphan/codecrafters-sqlite-go/internal/dberr"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Command
	}{
		{"dbinfo", ".dbinfo", DbInfo{}},
		{"dbinfo padded", "  .dbinfo\n", DbInfo{}},
		{"tables", ".tables", ListTables{}},
		{"count", "SELECT COUNT(*) FROM apples", CountRows{Table: "apples"}},
		{"count lower case", "select count(*) from apples", CountRows{Table: "apples"}},
		{"count where", "SELECT COUNT(*) FROM apples WHERE color = 'Red'", CountRows{
			Table: "apples",
			Where: &Predicate{Column: "color", Literal: "Red"},
		}},
		{"one column", "SELECT name FROM apples", Select{Columns: []string{"name"}, Table: "apples"}},
		{"two columns", "SELECT name, color FROM apples", Select{Columns: []string{"name", "color"}, Table: "apples"}},
		{"where", "SELECT name FROM apples WHERE color = 'Yellow'", Select{
			Columns: []string{"name"},
			Table:   "apples",
			Where:   &Predicate{Column: "color", Literal: "Yellow"},
		}},
		{"numeric literal", "SELECT name FROM apples WHERE id = 2", Select{
			Columns: []string{"name"},
			Table:   "apples",
			Where:   &Predicate{Column: "id", Literal: "2"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.text, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseUnrecognized(t *testing.T) {
	tests := []string{
		"",
		".schema",
		".DBINFO",
		"DELETE FROM apples",
		"INSERT INTO apples VALUES (1)",
		"SELECT name FROM apples ORDER BY name",
		"SELECT name FROM apples LIMIT 1",
		"SELECT name FROM apples WHERE color != 'Red'",
		"SELECT name FROM apples WHERE color = 'Red' AND id = '1'",
		"SELECT name FROM apples, oranges",
		"SELECT upper(name) FROM apples",
		"SELECT COUNT(name) FROM apples",
		"SELECT * FROM apples",
		"not even sql",
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			_, err := Parse(text)
			if !errors.Is(err, dberr.ErrUnrecognizedCommand) {
				t.Fatalf("Parse(%q) error = %v, want ErrUnrecognizedCommand", text, err)
			}
			var ce *dberr.CommandError
			if !errors.As(err, &ce) || ce.Command != text {
				t.Errorf("error does not carry the original text: %v", err)
			}
		})
	}
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{DbInfo{}, ".dbinfo"},
		{ListTables{}, ".tables"},
		{CountRows{Table: "apples"}, "count apples"},
		{Select{Columns: []string{"name", "color"}, Table: "apples", Where: &Predicate{Column: "id", Literal: "1"}},
			"select name,color from apples where id = '1'"},
	}

	for _, tt := range tests {
		if got := tt.cmd.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
