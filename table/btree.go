// Package table implements the B+ tree storage engine: the page codec
// (constants.go, node.go), the pager-backed Table facade (this file),
// and the Cursor that navigates it (cursor.go).
package table

import (
	"sort"

	"github.com/pkg/errors"

	"btreedb/pager"
)

// InsertResult mirrors the source's result enum.
type InsertResult int

const (
	InsertSuccess InsertResult = iota
	InsertDuplicateKey
	// InsertTableFull is a capacity-exceeded sentinel inherited from the
	// engine's earlier flat-array snapshot. The B+ tree insert path
	// never reports it as an outcome: Insert returns it only alongside a
	// non-nil error, where the result carries no meaning. It is kept on
	// the enum for source fidelity (see spec §6.2 and the Open Questions).
	InsertTableFull
)

// ErrUnsupportedSplit is returned when a leaf whose parent is not the
// root needs to split. The parent-update-after-split protocol (insert a
// separator into the parent, possibly cascade-split it, possibly grow
// the tree another level) is an explicit non-goal of this engine — see
// SPEC_FULL.md §D.2. The tree therefore supports exactly one root
// split: a leaf root becomes an internal root with two leaf children.
var ErrUnsupportedSplit = errors.New("need to implement update parent after split")

// Table owns a Pager and the tree's root page number, which is always
// 0 for the lifetime of the database file.
type Table struct {
	pager       *pager.Pager
	rootPageNum uint32
}

// Open opens filename through the pager and, if the file is brand new,
// materializes page 0 as an empty leaf root.
func Open(filename string) (*Table, error) {
	p, err := pager.Open(filename)
	if err != nil {
		return nil, err
	}

	t := &Table{pager: p, rootPageNum: 0}

	if p.NumPages() == 0 {
		root, err := p.GetPage(0)
		if err != nil {
			return nil, err
		}
		InitializeLeaf(root)
		SetNodeRoot(root, true)
	}

	return t, nil
}

// Close flushes every resident page and releases the file.
func (t *Table) Close() error {
	return t.pager.Close()
}

// leafNodeFind performs the binary search spec §4.3.2 describes over a
// leaf's cells: on an exact match it returns that cell's index; on a
// miss it returns the first index whose key is >= key (or NumCells if
// none), i.e. the insertion point.
func leafNodeFind(page *pager.Page, key uint32) uint32 {
	numCells := LeafNodeNumCells(page)
	start, end := uint32(0), numCells
	for start != end {
		mid := (start + end) / 2
		midKey := LeafNodeKey(page, mid)
		if key == midKey {
			return mid
		}
		if key < midKey {
			end = mid
		} else {
			start = mid + 1
		}
	}
	return start
}

// internalNodeFind resolves the child to descend into for key: the
// smallest index whose separator key is >= key, or NumKeys (meaning:
// follow RightChild) if no such separator exists. This is the
// recursive-descent resolution of spec's Open Question 1.
func internalNodeFind(page *pager.Page, key uint32) uint32 {
	numKeys := InternalNodeNumKeys(page)
	return uint32(sort.Search(int(numKeys), func(i int) bool {
		return InternalNodeKey(page, uint32(i)) >= key
	}))
}

// Find descends from the root to the leaf that would contain key and
// returns a cursor positioned at that key (if present) or at its
// sorted insertion point (if not).
func (t *Table) Find(key uint32) (*Cursor, error) {
	pageNum := t.rootPageNum
	var path []pathFrame

	for {
		page, err := t.pager.GetPage(pageNum)
		if err != nil {
			return nil, err
		}
		if GetNodeType(page) == NodeTypeLeaf {
			return &Cursor{
				table:   t,
				pageNum: pageNum,
				cellNum: leafNodeFind(page, key),
				path:    path,
			}, nil
		}

		childIdx := internalNodeFind(page, key)
		path = append(path, pathFrame{pageNum: pageNum, childIdx: childIdx})
		pageNum, err = InternalNodeChild(page, childIdx)
		if err != nil {
			return nil, err
		}
	}
}

// Insert adds row under key row.ID, rejecting an already-present key.
func (t *Table) Insert(row Row) (InsertResult, error) {
	if err := row.Validate(); err != nil {
		return InsertTableFull, err
	}

	key := row.ID
	cur, err := t.Find(key)
	if err != nil {
		return InsertTableFull, err
	}

	leaf, err := t.pager.GetPage(cur.pageNum)
	if err != nil {
		return InsertTableFull, err
	}

	if cur.cellNum < LeafNodeNumCells(leaf) && LeafNodeKey(leaf, cur.cellNum) == key {
		return InsertDuplicateKey, nil
	}

	if err := t.leafNodeInsert(cur, key, row); err != nil {
		return InsertTableFull, err
	}
	return InsertSuccess, nil
}

// leafNodeInsert implements spec §4.3.4 (room available) and delegates
// to the split path once a leaf is full.
func (t *Table) leafNodeInsert(cur *Cursor, key uint32, row Row) error {
	page, err := t.pager.GetPage(cur.pageNum)
	if err != nil {
		return err
	}

	numCells := LeafNodeNumCells(page)
	if numCells >= LeafNodeMaxCells {
		return t.leafNodeSplitAndInsert(cur, key, row)
	}

	for i := numCells; i > cur.cellNum; i-- {
		copy(LeafNodeCell(page, i), LeafNodeCell(page, i-1))
	}

	SetLeafNodeNumCells(page, numCells+1)
	SetLeafNodeKey(page, cur.cellNum, key)
	if err := SerializeRow(row, LeafNodeValue(page, cur.cellNum)); err != nil {
		return err
	}
	return nil
}

// leafNodeSplitAndInsert implements spec §4.3.5: the full leaf plus the
// incoming cell are redistributed, descending i from LeafNodeMaxCells
// to 0, so that the new cell lands at its sorted position in the
// combined stream without a separate shift pass.
func (t *Table) leafNodeSplitAndInsert(cur *Cursor, key uint32, row Row) error {
	oldPage, err := t.pager.GetPage(cur.pageNum)
	if err != nil {
		return err
	}

	// A split on a non-root leaf would need to insert a separator into
	// its parent (and possibly cascade further splits), which this
	// engine does not implement (see ErrUnsupportedSplit). Check that
	// before allocating a new page or moving any cell, so a rejected
	// split leaves oldPage untouched instead of half-redistributed.
	if !IsNodeRoot(oldPage) {
		return ErrUnsupportedSplit
	}

	newPageNum := t.pager.GetUnusedPageNum()
	newPage, err := t.pager.GetPage(newPageNum)
	if err != nil {
		return err
	}
	InitializeLeaf(newPage)

	for i := int64(LeafNodeMaxCells); i >= 0; i-- {
		idx := uint32(i)

		var dest *pager.Page
		if idx >= LeafNodeLeftSplitCount {
			dest = newPage
		} else {
			dest = oldPage
		}
		destIdx := idx % LeafNodeLeftSplitCount
		destCell := LeafNodeCell(dest, destIdx)

		switch {
		case idx == cur.cellNum:
			destKey := destCell[:LeafNodeKeySize]
			destKey[0] = byte(key)
			destKey[1] = byte(key >> 8)
			destKey[2] = byte(key >> 16)
			destKey[3] = byte(key >> 24)
			if err := SerializeRow(row, destCell[LeafNodeKeySize:]); err != nil {
				return err
			}
		case idx > cur.cellNum:
			copy(destCell, LeafNodeCell(oldPage, idx-1))
		default:
			copy(destCell, LeafNodeCell(oldPage, idx))
		}
	}

	SetLeafNodeNumCells(oldPage, LeafNodeLeftSplitCount)
	SetLeafNodeNumCells(newPage, LeafNodeRightSplitCount)

	return t.createNewRoot(newPageNum)
}

// createNewRoot implements spec §4.3.6: the current root (by now the
// left half of the split leaf) is copied into a freshly allocated left-child page, and page 0 itself
// is reinitialized as the internal root pointing at that left child and
// the already-allocated right sibling.
func (t *Table) createNewRoot(rightChildPageNum uint32) error {
	root, err := t.pager.GetPage(t.rootPageNum)
	if err != nil {
		return err
	}
	rightChild, err := t.pager.GetPage(rightChildPageNum)
	if err != nil {
		return err
	}

	leftChildPageNum := t.pager.GetUnusedPageNum()
	leftChild, err := t.pager.GetPage(leftChildPageNum)
	if err != nil {
		return err
	}

	leftChild.Data = root.Data
	SetNodeRoot(leftChild, false)

	InitializeInternal(root)
	SetNodeRoot(root, true)
	SetInternalNodeNumKeys(root, 1)
	SetInternalNodeChild(root, 0, leftChildPageNum)
	SetInternalNodeKey(root, 0, GetNodeMaxKey(leftChild))
	SetInternalNodeRightChild(root, rightChildPageNum)

	_ = rightChild // already resident; nothing further to write here
	return nil
}

// SelectAll emits every row in the table in ascending key order.
func (t *Table) SelectAll(emit func(Row) error) error {
	cur, err := t.Start()
	if err != nil {
		return err
	}
	for cur.Valid() {
		buf, err := cur.Value()
		if err != nil {
			return err
		}
		row, err := DeserializeRow(buf)
		if err != nil {
			return err
		}
		if err := emit(row); err != nil {
			return err
		}
		if err := cur.Advance(); err != nil {
			return err
		}
	}
	return nil
}
