package query

import (
	"fmt"
	"strings"

	"github.com/thanhfphan/codecrafters-sqlite-go/internal/page"
	"github.com/thanhfphan/codecrafters-sqlite-go/internal/record"
)

type column struct {
	index int
	rowID bool // INTEGER PRIMARY KEY: the value lives in the cell's rowid
}

func (c column) value(rec record.Record, rowID int64) record.Value {
	if c.rowID {
		return record.IntValue(rowID)
	}
	return rec.Column(c.index)
}

type filter struct {
	column  column
	literal string
}

// Rows is a forward-only cursor over the result of Select. It cannot be
// restarted; run the command again instead.
type Rows struct {
	cur     *page.Cursor
	columns []column
	filter  *filter

	values []record.Value
	err    error
	closed bool
}

// Next decodes records until one passes the filter. It returns false at the
// end of the table or on error.
func (r *Rows) Next() bool {
	if r.closed || r.err != nil {
		return false
	}

	for r.cur.Next() {
		cell := r.cur.Cell()
		rec, err := record.DecodeBytes(cell.Payload)
		if err != nil {
			r.err = fmt.Errorf("decode row %d err: %w", cell.RowID, err)
			return false
		}

		if r.filter != nil && !r.filter.column.value(rec, cell.RowID).Equal(r.filter.literal) {
			continue
		}

		values := make([]record.Value, len(r.columns))
		for i, col := range r.columns {
			values[i] = col.value(rec, cell.RowID)
		}
		r.values = values
		return true
	}

	r.err = r.cur.Err()
	r.values = nil
	return false
}

// Values returns the projected values of the current row.
func (r *Rows) Values() []record.Value {
	return r.values
}

// Strings returns the current row's values as display text.
func (r *Rows) Strings() []string {
	out := make([]string, len(r.values))
	for i, v := range r.values {
		out[i] = v.String()
	}
	return out
}

// Line joins the current row's values with "|" the way the sqlite3 shell does.
func (r *Rows) Line() string {
	return strings.Join(r.Strings(), "|")
}

func (r *Rows) Err() error {
	return r.err
}

func (r *Rows) Close() error {
	r.closed = true
	r.values = nil
	return nil
}
