package table

import "btreedb/pager"

// pathFrame records one internal-node step taken while descending from
// the root: the page we were at, and which child index we followed.
// Cursor keeps the whole root-to-leaf path so Advance can climb back up
// and find the next subtree once the current leaf runs out of cells —
// the leaf layout has no sibling pointer (spec §3.4), so crossing a leaf
// boundary means re-descending from an ancestor instead.
type pathFrame struct {
	pageNum  uint32
	childIdx uint32
}

// Cursor is a transient logical position inside the tree: a page, a
// cell within it, and whether that position is one past the last cell
// of the table. Cursors are single-use: callers discard one after the
// operation that created it completes, and never hold one across a
// structural mutation (split) of the tree.
type Cursor struct {
	table      *Table
	pageNum    uint32
	cellNum    uint32
	endOfTable bool
	path       []pathFrame
}

// Start returns a cursor positioned at the table's first row in key
// order (or past the end, if the table is empty).
func (t *Table) Start() (*Cursor, error) {
	pageNum := t.rootPageNum
	var path []pathFrame

	for {
		page, err := t.pager.GetPage(pageNum)
		if err != nil {
			return nil, err
		}
		if GetNodeType(page) == NodeTypeLeaf {
			return &Cursor{
				table:      t,
				pageNum:    pageNum,
				cellNum:    0,
				endOfTable: LeafNodeNumCells(page) == 0,
				path:       path,
			}, nil
		}
		path = append(path, pathFrame{pageNum: pageNum, childIdx: 0})
		pageNum, err = InternalNodeChild(page, 0)
		if err != nil {
			return nil, err
		}
	}
}

// Valid reports whether the cursor currently points at an existing
// cell (as opposed to one-past-the-end).
func (c *Cursor) Valid() bool { return !c.endOfTable }

// Key returns the key of the cell the cursor currently points at.
// Only meaningful when Valid() is true.
func (c *Cursor) Key() (uint32, error) {
	page, err := c.table.pager.GetPage(c.pageNum)
	if err != nil {
		return 0, err
	}
	return LeafNodeKey(page, c.cellNum), nil
}

// Value returns the serialized row bytes the cursor currently points
// at.
func (c *Cursor) Value() ([]byte, error) {
	page, err := c.table.pager.GetPage(c.pageNum)
	if err != nil {
		return nil, err
	}
	return LeafNodeValue(page, c.cellNum), nil
}

// Advance moves the cursor to the next cell in ascending key order,
// crossing a leaf boundary by climbing the recorded path to the
// nearest ancestor with a further child and descending back down that
// child's left spine.
func (c *Cursor) Advance() error {
	page, err := c.table.pager.GetPage(c.pageNum)
	if err != nil {
		return err
	}

	c.cellNum++
	if c.cellNum < LeafNodeNumCells(page) {
		return nil
	}

	for len(c.path) > 0 {
		top := len(c.path) - 1
		frame := c.path[top]

		ancestor, err := c.table.pager.GetPage(frame.pageNum)
		if err != nil {
			return err
		}

		nextChildIdx := frame.childIdx + 1
		if nextChildIdx > InternalNodeNumKeys(ancestor) {
			// This ancestor's children are all visited; keep climbing.
			c.path = c.path[:top]
			continue
		}

		c.path[top].childIdx = nextChildIdx
		childPageNum, err := InternalNodeChild(ancestor, nextChildIdx)
		if err != nil {
			return err
		}

		return c.descendLeftSpine(childPageNum)
	}

	c.endOfTable = true
	return nil
}

// descendLeftSpine positions the cursor at the leftmost leaf reachable
// from pageNum, pushing any internal nodes crossed onto the path.
func (c *Cursor) descendLeftSpine(pageNum uint32) error {
	for {
		page, err := c.table.pager.GetPage(pageNum)
		if err != nil {
			return err
		}
		if GetNodeType(page) == NodeTypeLeaf {
			c.pageNum = pageNum
			c.cellNum = 0
			c.endOfTable = false
			return nil
		}
		c.path = append(c.path, pathFrame{pageNum: pageNum, childIdx: 0})
		pageNum, err = InternalNodeChild(page, 0)
		if err != nil {
			return err
		}
	}
}
