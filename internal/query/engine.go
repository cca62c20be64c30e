package query

import (
	"context"
	"fmt"

	"github.com/thanhfphan/codecrafters-sqlite-go/internal/dbfile"
	"github.com/thanhfphan/codecrafters-sqlite-go/internal/logging"
	"github.com/thanhfphan/codecrafters-sqlite-go/internal/page"
	"github.com/thanhfphan/codecrafters-sqlite-go/internal/schema"
)

// Engine runs commands against one open database file. It holds no state
// between commands: every call reads what it needs from the file again.
type Engine struct {
	file *dbfile.File
	mode page.Mode
}

func NewEngine(file *dbfile.File, mode page.Mode) *Engine {
	return &Engine{file: file, mode: mode}
}

func (e *Engine) catalog() *schema.Catalog {
	return schema.New(e.file.Pages(), e.mode)
}

// Info is the result of DbInfo.
type Info struct {
	PageSize   int
	TableCount int
}

// DbInfo reads the page size from the file header and the number of schema
// entries from page 1's cell count. No record is decoded.
func (e *Engine) DbInfo(ctx context.Context) (Info, error) {
	// page 1 which is always a table b-tree page
	count, _, err := e.file.Pages().ReadHeader(1)
	if err != nil {
		return Info{}, fmt.Errorf("read page 1 header err: %w", err)
	}

	logging.DebugContext(ctx, "dbinfo", "page_size", e.file.PageSize(), "cells", count)
	return Info{PageSize: e.file.PageSize(), TableCount: count}, nil
}

// ListTables returns the name of every schema row in catalog order.
func (e *Engine) ListTables(ctx context.Context) ([]string, error) {
	rows, err := e.catalog().Rows()
	if err != nil {
		return nil, err
	}

	tables := make([]string, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, row.Name)
	}
	logging.DebugContext(ctx, "list_tables", "count", len(tables))
	return tables, nil
}

// CountRows counts a table's rows. Without a filter only page headers are
// read; with one every row is decoded and compared.
func (e *Engine) CountRows(ctx context.Context, cmd CountRows) (int, error) {
	tbl, err := e.catalog().FindTable(cmd.Table)
	if err != nil {
		return 0, err
	}
	logging.DebugContext(ctx, "count_rows", "table", tbl.Name, "root_page", tbl.RootPage, "mode", e.mode.String())

	if cmd.Where == nil {
		count, err := e.file.Pages().CountCells(tbl.RootPage, e.mode)
		if err != nil {
			return 0, fmt.Errorf("count record table: %s err: %w", tbl.Name, err)
		}
		return count, nil
	}

	rows, err := e.scan(tbl, nil, cmd.Where)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("count record table: %s err: %w", tbl.Name, err)
	}
	return count, nil
}

// Select resolves the table and columns and returns a cursor over the
// matching rows. Rows come back in cell order.
func (e *Engine) Select(ctx context.Context, cmd Select) (*Rows, error) {
	tbl, err := e.catalog().FindTable(cmd.Table)
	if err != nil {
		return nil, err
	}
	logging.DebugContext(ctx, "select",
		"table", tbl.Name,
		"root_page", tbl.RootPage,
		"columns", cmd.Columns,
		"mode", e.mode.String(),
	)

	return e.scan(tbl, cmd.Columns, cmd.Where)
}

func (e *Engine) scan(tbl schema.Table, columns []string, where *Predicate) (*Rows, error) {
	defs, err := tbl.Columns()
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", tbl.Name, err)
	}

	resolve := func(name string) (column, error) {
		idx, err := schema.ResolveColumnIndex(tbl.SQL, name)
		if err != nil {
			return column{}, fmt.Errorf("table %s: %w", tbl.Name, err)
		}
		return column{index: idx, rowID: defs[idx].RowIDAlias}, nil
	}

	rows := &Rows{cur: page.NewCursor(e.file.Pages(), tbl.RootPage, e.mode)}
	for _, name := range columns {
		col, err := resolve(name)
		if err != nil {
			return nil, err
		}
		rows.columns = append(rows.columns, col)
	}
	if where != nil {
		col, err := resolve(where.Column)
		if err != nil {
			return nil, err
		}
		rows.filter = &filter{column: col, literal: where.Literal}
	}

	return rows, nil
}
