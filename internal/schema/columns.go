package schema

import (
	"strings"

	"github.com/thanhfphan/codecrafters-sqlite-go/internal/dberr"
)

// Column is one entry of a creation statement's column list.
type Column struct {
	Name  string
	Index int
	Decl  string // everything after the name, as written

	// RowIDAlias marks an INTEGER PRIMARY KEY column. Its value is stored as
	// NULL in the record and read from the cell's rowid instead.
	RowIDAlias bool
}

// ResolveColumnIndex returns the 0-based position of column in createSQL.
//
// The column list is the text between the first '(' and the last ')', split
// on commas; the first whitespace-delimited token of each piece is the column
// name and must match exactly. This is a textual heuristic: a comma inside a
// type such as DECIMAL(10,2) shifts the positions that follow it.
func ResolveColumnIndex(createSQL, column string) (int, error) {
	defs, err := columnDefs(createSQL)
	if err != nil {
		return -1, err
	}

	for i, def := range defs {
		fields := strings.Fields(def)
		if len(fields) > 0 && fields[0] == column {
			return i, nil
		}
	}

	return -1, &dberr.NotFoundError{Resource: "column", ID: column}
}

// ParseColumns splits createSQL the same way ResolveColumnIndex does and
// returns every piece as a Column.
func ParseColumns(createSQL string) ([]Column, error) {
	defs, err := columnDefs(createSQL)
	if err != nil {
		return nil, err
	}

	columns := make([]Column, 0, len(defs))
	for i, def := range defs {
		fields := strings.Fields(def)
		col := Column{Index: i}
		if len(fields) > 0 {
			col.Name = fields[0]
			col.Decl = strings.Join(fields[1:], " ")
			col.RowIDAlias = isRowIDAlias(fields[1:])
		}
		columns = append(columns, col)
	}
	return columns, nil
}

func columnDefs(createSQL string) ([]string, error) {
	open := strings.IndexByte(createSQL, '(')
	end := strings.LastIndexByte(createSQL, ')')
	if open < 0 || end < open {
		return nil, &dberr.ParseError{
			Format:  "create table",
			Input:   createSQL,
			Message: "no parenthesized column list",
		}
	}
	return strings.Split(createSQL[open+1:end], ","), nil
}

// isRowIDAlias reports whether a declaration is INTEGER PRIMARY KEY.
// The DESC form is not an alias.
func isRowIDAlias(decl []string) bool {
	if len(decl) < 3 || !strings.EqualFold(decl[0], "integer") {
		return false
	}
	if !strings.EqualFold(decl[1], "primary") || !strings.EqualFold(decl[2], "key") {
		return false
	}
	return len(decl) == 3 || !strings.EqualFold(decl[3], "desc")
}
