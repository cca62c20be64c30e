// Package schema reads the sqlite_schema table stored on page 1 and resolves
// table names and column positions from it.
package schema

import (
	"fmt"
	"strings"

	"github.com/thanhfphan/codecrafters-sqlite-go/internal/dberr"
	"github.com/thanhfphan/codecrafters-sqlite-go/internal/logging"
	"github.com/thanhfphan/codecrafters-sqlite-go/internal/page"
	"github.com/thanhfphan/codecrafters-sqlite-go/internal/record"
)

// CREATE TABLE sqlite_schema(
//
//	type text,
//	name text,
//	tbl_name text,
//	rootpage integer,
//	sql text
//
// );
// https://www.sqlite.org/fileformat.html#storage_of_the_sql_database_schema
const (
	colType = iota
	colName
	colTblName
	colRootPage
	colSQL
)

// schemaRootPage is where sqlite_schema always lives.
const schemaRootPage = 1

// Row is one row of sqlite_schema.
type Row struct {
	RowID    int64
	Type     string // "table", "index", "view" or "trigger"
	Name     string
	TblName  string
	RootPage uint32 // 0 for views and triggers
	SQL      string
}

// Table is a resolved table: where its b-tree starts and how it was created.
type Table struct {
	Name     string
	RootPage uint32
	SQL      string
}

// Catalog reads schema rows on demand. Nothing is cached between calls.
type Catalog struct {
	pages *page.Reader
	mode  page.Mode
}

func New(pages *page.Reader, mode page.Mode) *Catalog {
	return &Catalog{pages: pages, mode: mode}
}

// Rows decodes every schema row in cell order.
func (c *Catalog) Rows() ([]Row, error) {
	var rows []Row

	cur := page.NewCursor(c.pages, schemaRootPage, c.mode)
	for cur.Next() {
		cell := cur.Cell()
		rec, err := record.DecodeBytes(cell.Payload)
		if err != nil {
			return nil, fmt.Errorf("parse record table master err: %w", err)
		}
		rows = append(rows, rowFromRecord(cell.RowID, rec))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("read sqlite_schema err: %w", err)
	}

	return rows, nil
}

func rowFromRecord(rowID int64, rec record.Record) Row {
	row := Row{
		RowID:   rowID,
		Type:    rec.Column(colType).String(),
		Name:    rec.Column(colName).String(),
		TblName: rec.Column(colTblName).String(),
		SQL:     rec.Column(colSQL).String(),
	}
	if root := rec.Column(colRootPage); root.Kind == record.Integer && root.Int > 0 {
		row.RootPage = uint32(root.Int)
	}
	return row
}

// FindTable returns the first table whose tbl_name matches name, ignoring
// surrounding whitespace and case.
func (c *Catalog) FindTable(name string) (Table, error) {
	rows, err := c.Rows()
	if err != nil {
		return Table{}, err
	}

	want := strings.TrimSpace(name)
	for _, row := range rows {
		if row.Type != "table" {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(row.TblName), want) {
			continue
		}

		logging.Debug("table_resolved", "table", row.TblName, "root_page", row.RootPage)
		return Table{Name: row.TblName, RootPage: row.RootPage, SQL: row.SQL}, nil
	}

	return Table{}, &dberr.NotFoundError{Resource: "table", ID: name}
}

// Columns parses the table's creation statement.
func (t Table) Columns() ([]Column, error) {
	return ParseColumns(t.SQL)
}
