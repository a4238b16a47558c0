package table

import (
	"btreedb/column"
	"btreedb/pager"
)

// Common node header layout (present in every node, leaf or internal).
const (
	NodeTypeSize   = 1
	NodeTypeOffset = 0

	IsRootSize   = 1
	IsRootOffset = NodeTypeOffset + NodeTypeSize

	ParentPointerSize   = 4
	ParentPointerOffset = IsRootOffset + IsRootSize

	CommonNodeHeaderSize = NodeTypeSize + IsRootSize + ParentPointerSize // 6
)

// Leaf node header and cell layout.
const (
	LeafNodeNumCellsSize   = 4
	LeafNodeNumCellsOffset = CommonNodeHeaderSize
	LeafNodeHeaderSize     = CommonNodeHeaderSize + LeafNodeNumCellsSize // 10

	LeafNodeKeySize   = 4
	LeafNodeKeyOffset = 0
)

// RowSize is 4 (id) + 33 (username) + 256 (email) = 293.
var RowSize = column.RowSchema.RowSize()

// LeafNodeValueSize, LeafNodeCellSize, LeafNodeSpaceForCells and
// LeafNodeMaxCells are derived from RowSize, matching spec §3.4/§6.3.
var (
	LeafNodeValueSize       = RowSize
	LeafNodeCellSize        = LeafNodeKeySize + LeafNodeValueSize
	LeafNodeSpaceForCells   = uint32(pager.PageSize) - LeafNodeHeaderSize
	LeafNodeMaxCells        = LeafNodeSpaceForCells / LeafNodeCellSize
	LeafNodeRightSplitCount = (LeafNodeMaxCells + 1) / 2
	LeafNodeLeftSplitCount  = (LeafNodeMaxCells + 1) - LeafNodeRightSplitCount
)

// Internal node header and cell layout.
const (
	InternalNodeNumKeysSize   = 4
	InternalNodeNumKeysOffset = CommonNodeHeaderSize

	InternalNodeRightChildSize   = 4
	InternalNodeRightChildOffset = InternalNodeNumKeysOffset + InternalNodeNumKeysSize

	InternalNodeHeaderSize = CommonNodeHeaderSize + InternalNodeNumKeysSize + InternalNodeRightChildSize // 14

	InternalNodeKeySize   = 4
	InternalNodeChildSize = 4
	InternalNodeCellSize  = InternalNodeChildSize + InternalNodeKeySize // 8
)

// InternalNodeMaxCells is not exercised by the writer path (see the
// Non-goals around internal-node splitting) and is not printed by the
// diagnostic dump; it is kept for symmetry with LeafNodeMaxCells.
var InternalNodeMaxCells = (uint32(pager.PageSize) - InternalNodeHeaderSize) / InternalNodeCellSize
