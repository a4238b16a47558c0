package table

import (
	"fmt"
	"io"
)

// PrintTree walks the tree rooted at pageNum and writes an indented
// dump to w, two spaces per level: a leaf prints its size and then
// each key; an internal node prints its size, then recurses into each
// inline child followed by that child's separator key, and finally
// recurses into right_child. This traversal order (child, then key)
// matches the source's print_tree exactly and is load-bearing for the
// .btree dump's output shape.
func (t *Table) PrintTree(w io.Writer, pageNum, level uint32) error {
	page, err := t.pager.GetPage(pageNum)
	if err != nil {
		return err
	}

	switch GetNodeType(page) {
	case NodeTypeLeaf:
		numCells := LeafNodeNumCells(page)
		indent(w, level)
		fmt.Fprintf(w, "- leaf (size %d)\n", numCells)
		for i := uint32(0); i < numCells; i++ {
			indent(w, level+1)
			fmt.Fprintf(w, "- %d\n", LeafNodeKey(page, i))
		}

	default:
		numKeys := InternalNodeNumKeys(page)
		indent(w, level)
		fmt.Fprintf(w, "- internal (size %d)\n", numKeys)
		for i := uint32(0); i < numKeys; i++ {
			child, err := InternalNodeChild(page, i)
			if err != nil {
				return err
			}
			if err := t.PrintTree(w, child, level+1); err != nil {
				return err
			}
			indent(w, level+1)
			fmt.Fprintf(w, "- key %d\n", InternalNodeKey(page, i))
		}
		rightChild := InternalNodeRightChild(page)
		if err := t.PrintTree(w, rightChild, level+1); err != nil {
			return err
		}
	}

	return nil
}

func indent(w io.Writer, level uint32) {
	for i := uint32(0); i < level; i++ {
		fmt.Fprint(w, "  ")
	}
}

// PrintConstants writes the derived page-layout constants spec §6.3
// expects the diagnostic dump to report.
func PrintConstants(w io.Writer) {
	fmt.Fprintf(w, "ROW_SIZE: %d\n", RowSize)
	fmt.Fprintf(w, "COMMON_NODE_HEADER_SIZE: %d\n", CommonNodeHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_HEADER_SIZE: %d\n", LeafNodeHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_CELL_SIZE: %d\n", LeafNodeCellSize)
	fmt.Fprintf(w, "LEAF_NODE_SPACE_FOR_CELLS: %d\n", LeafNodeSpaceForCells)
	fmt.Fprintf(w, "LEAF_NODE_MAX_CELLS: %d\n", LeafNodeMaxCells)
}
