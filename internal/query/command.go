// Package query turns command text into commands and runs them against a
// database file.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xwb1989/sqlparser"

	"github.com/thanhfphan/codecrafters-sqlite-go/internal/dberr"
)

// Command is one of DbInfo, ListTables, CountRows or Select.
type Command interface {
	fmt.Stringer
	isCommand()
}

// DbInfo reports the page size and the number of schema entries.
type DbInfo struct{}

// ListTables lists the name of every schema entry.
type ListTables struct{}

// Predicate is a single column = 'literal' filter.
type Predicate struct {
	Column  string
	Literal string
}

// CountRows counts the rows of Table, optionally only those matching Where.
type CountRows struct {
	Table string
	Where *Predicate
}

// Select projects Columns from the rows of Table that match Where.
type Select struct {
	Columns []string
	Table   string
	Where   *Predicate
}

func (DbInfo) isCommand() {}
func (ListTables) isCommand() {}
func (CountRows) isCommand() {}
func (Select) isCommand() {}

func (DbInfo) String() string { return ".dbinfo" }
func (ListTables) String() string { return ".tables" }

func (c CountRows) String() string {
	return "count " + c.Table + c.Where.suffix()
}

func (c Select) String() string {
	return "select " + strings.Join(c.Columns, ",") + " from " + c.Table + c.Where.suffix()
}

func (p *Predicate) suffix() string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf(" where %s = '%s'", p.Column, p.Literal)
}

// Parse recognizes the dot commands and the two SELECT shapes:
//
//	SELECT COUNT(*) FROM t [WHERE c = 'v']
//	SELECT c1[, c2 ...] FROM t [WHERE c = 'v']
//
// Anything else is an unrecognized command.
func Parse(text string) (Command, error) {
	trimmed := strings.TrimSpace(text)
	switch trimmed {
	case ".dbinfo":
		return DbInfo{}, nil
	case ".tables":
		return ListTables{}, nil
	}

	unrecognized := func(err error) error {
		return &dberr.CommandError{Command: text, Err: err}
	}

	if trimmed == "" || strings.HasPrefix(trimmed, ".") {
		return nil, unrecognized(nil)
	}

	stmt, err := sqlparser.Parse(trimmed)
	if err != nil {
		return nil, unrecognized(err)
	}

	selectCmd, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, unrecognized(nil)
	}
	if selectCmd.Distinct != "" || len(selectCmd.GroupBy) > 0 || selectCmd.Having != nil ||
		len(selectCmd.OrderBy) > 0 || selectCmd.Limit != nil {
		return nil, unrecognized(errors.New("only plain SELECT ... FROM ... [WHERE ...] is supported"))
	}

	tableName, err := parseFrom(selectCmd.From)
	if err != nil {
		return nil, unrecognized(err)
	}

	where, err := parseWhere(selectCmd.Where)
	if err != nil {
		return nil, unrecognized(err)
	}

	if isCountStar(selectCmd.SelectExprs) {
		return CountRows{Table: tableName, Where: where}, nil
	}

	columns := make([]string, 0, len(selectCmd.SelectExprs))
	for _, expr := range selectCmd.SelectExprs {
		aliased, ok := expr.(*sqlparser.AliasedExpr)
		if !ok {
			return nil, unrecognized(fmt.Errorf("unsupported select expression: %s", sqlparser.String(expr)))
		}
		col, ok := aliased.Expr.(*sqlparser.ColName)
		if !ok {
			return nil, unrecognized(fmt.Errorf("unsupported select expression: %s", sqlparser.String(expr)))
		}
		columns = append(columns, col.Name.String())
	}

	return Select{Columns: columns, Table: tableName, Where: where}, nil
}

func parseFrom(from sqlparser.TableExprs) (string, error) {
	if len(from) != 1 {
		return "", fmt.Errorf("expected exactly one table, got %d", len(from))
	}
	aliased, ok := from[0].(*sqlparser.AliasedTableExpr)
	if !ok {
		return "", fmt.Errorf("unsupported table expression: %s", sqlparser.String(from[0]))
	}
	tableName, ok := aliased.Expr.(sqlparser.TableName)
	if !ok {
		return "", fmt.Errorf("unsupported table expression: %s", sqlparser.String(from[0]))
	}
	return tableName.Name.String(), nil
}

func isCountStar(exprs sqlparser.SelectExprs) bool {
	if len(exprs) != 1 {
		return false
	}
	aliased, ok := exprs[0].(*sqlparser.AliasedExpr)
	if !ok {
		return false
	}
	fn, ok := aliased.Expr.(*sqlparser.FuncExpr)
	if !ok || fn.Name.Lowered() != "count" || len(fn.Exprs) != 1 {
		return false
	}
	_, ok = fn.Exprs[0].(*sqlparser.StarExpr)
	return ok
}

func parseWhere(where *sqlparser.Where) (*Predicate, error) {
	if where == nil {
		return nil, nil
	}

	cmp, ok := where.Expr.(*sqlparser.ComparisonExpr)
	if !ok || cmp.Operator != sqlparser.EqualStr {
		return nil, fmt.Errorf("only column = 'value' filters are supported: %s", sqlparser.String(where.Expr))
	}
	col, ok := cmp.Left.(*sqlparser.ColName)
	if !ok {
		return nil, fmt.Errorf("left side of the filter must be a column: %s", sqlparser.String(cmp.Left))
	}
	val, ok := cmp.Right.(*sqlparser.SQLVal)
	if !ok {
		return nil, fmt.Errorf("right side of the filter must be a literal: %s", sqlparser.String(cmp.Right))
	}
	switch val.Type {
	case sqlparser.StrVal, sqlparser.IntVal, sqlparser.FloatVal:
	default:
		return nil, fmt.Errorf("unsupported literal: %s", sqlparser.String(val))
	}

	return &Predicate{Column: col.Name.String(), Literal: string(val.Val)}, nil
}
