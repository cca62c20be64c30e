package page

import (
	"fmt"

	"github.com/thanhfphan/codecrafters-sqlite-go/internal/dberr"
)

// Mode selects how a table's root page is interpreted.
type Mode int

const (
	// ModeTree walks interior table pages down to every leaf.
	ModeTree Mode = iota
	// ModeSinglePage reads only the root page and treats it as the whole table.
	ModeSinglePage
)

func (m Mode) String() string {
	if m == ModeSinglePage {
		return "single-page"
	}
	return "tree"
}

// Cursor iterates the leaf cells of a table b-tree in rowid order.
// Pages are visited depth first with an explicit stack; a page seen twice
// means the file is corrupt.
type Cursor struct {
	r    *Reader
	mode Mode

	stack []uint32
	seen  map[uint32]bool

	page *Page
	idx  int
	cell LeafCell
	err  error
}

// NewCursor returns a cursor over the table rooted at root.
func NewCursor(r *Reader, root uint32, mode Mode) *Cursor {
	return &Cursor{
		r:     r,
		mode:  mode,
		stack: []uint32{root},
		seen:  make(map[uint32]bool),
	}
}

// Next advances to the next leaf cell. It returns false when the table is
// exhausted or an error occurred; check Err afterwards.
func (c *Cursor) Next() bool {
	for c.err == nil {
		if c.page != nil && c.idx < len(c.page.CellPointers) {
			cell, err := c.page.LeafCell(c.idx)
			if err != nil {
				c.err = err
				return false
			}
			c.idx++
			c.cell = cell
			return true
		}

		c.page = nil
		if len(c.stack) == 0 {
			return false
		}
		n := c.stack[len(c.stack)-1]
		c.stack = c.stack[:len(c.stack)-1]
		c.err = c.descend(n)
	}
	return false
}

// Cell returns the cell the last successful Next stopped on.
func (c *Cursor) Cell() LeafCell {
	return c.cell
}

func (c *Cursor) Err() error {
	return c.err
}

func (c *Cursor) descend(n uint32) error {
	p, err := c.visit(n)
	if err != nil {
		return err
	}

	switch p.Header.Kind {
	case KindLeafTable:
		c.page = p
		c.idx = 0
		return nil
	case KindInteriorTable:
		if c.mode == ModeSinglePage {
			return &dberr.UnsupportedError{
				Feature: "interior pages",
				Reason:  fmt.Sprintf("page %d is an interior table page and only the root page is read", n),
			}
		}
		children, err := p.Children()
		if err != nil {
			return err
		}
		// push right to left so the left-most child is popped first
		for i := len(children) - 1; i >= 0; i-- {
			c.stack = append(c.stack, children[i])
		}
		return nil
	}
	return fmt.Errorf("%w: page %d is a %s page inside a table b-tree", dberr.ErrCorrupt, n, p.Header.Kind)
}

func (c *Cursor) visit(n uint32) (*Page, error) {
	if c.seen[n] {
		return nil, fmt.Errorf("%w: page %d is reachable twice from the same root", dberr.ErrCorrupt, n)
	}
	c.seen[n] = true
	return c.r.Read(n)
}

// CountCells returns the number of rows in the table rooted at root without
// decoding any record. In ModeSinglePage this is the root page's cell count,
// whatever kind of page the root is.
func (r *Reader) CountCells(root uint32, mode Mode) (int, error) {
	if mode == ModeSinglePage {
		count, _, err := r.ReadHeader(root)
		return count, err
	}

	total := 0
	stack := []uint32{root}
	seen := make(map[uint32]bool)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			return 0, fmt.Errorf("%w: page %d is reachable twice from the same root", dberr.ErrCorrupt, n)
		}
		seen[n] = true

		p, err := r.Read(n)
		if err != nil {
			return 0, err
		}
		switch p.Header.Kind {
		case KindLeafTable:
			total += len(p.CellPointers)
		case KindInteriorTable:
			children, err := p.Children()
			if err != nil {
				return 0, err
			}
			stack = append(stack, children...)
		default:
			return 0, fmt.Errorf("%w: page %d is a %s page inside a table b-tree", dberr.ErrCorrupt, n, p.Header.Kind)
		}
	}
	return total, nil
}
