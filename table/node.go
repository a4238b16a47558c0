package table

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"btreedb/pager"
)

// NodeType distinguishes leaf pages from internal pages. The numeric
// values match spec §3.3: 0 = internal, 1 = leaf.
type NodeType uint8

const (
	NodeTypeInternal NodeType = 0
	NodeTypeLeaf     NodeType = 1
)

func getU32(buf []byte, offset uint32) uint32 {
	return binary.LittleEndian.Uint32(buf[offset : offset+4])
}

func putU32(buf []byte, offset, v uint32) {
	binary.LittleEndian.PutUint32(buf[offset:offset+4], v)
}

// --- common header ---

func GetNodeType(page *pager.Page) NodeType {
	return NodeType(page.Data[NodeTypeOffset])
}

func SetNodeType(page *pager.Page, t NodeType) {
	page.Data[NodeTypeOffset] = byte(t)
}

func IsNodeRoot(page *pager.Page) bool {
	return page.Data[IsRootOffset] != 0
}

func SetNodeRoot(page *pager.Page, isRoot bool) {
	if isRoot {
		page.Data[IsRootOffset] = 1
	} else {
		page.Data[IsRootOffset] = 0
	}
}

// ParentPointer is reserved by spec §3.3: the field exists in every
// header but the writer path never consults it.
func ParentPointer(page *pager.Page) uint32 {
	return getU32(page.Data[:], ParentPointerOffset)
}

func SetParentPointer(page *pager.Page, pageNum uint32) {
	putU32(page.Data[:], ParentPointerOffset, pageNum)
}

// --- leaf node ---

func LeafNodeNumCells(page *pager.Page) uint32 {
	return getU32(page.Data[:], LeafNodeNumCellsOffset)
}

func SetLeafNodeNumCells(page *pager.Page, n uint32) {
	putU32(page.Data[:], LeafNodeNumCellsOffset, n)
}

// LeafNodeCellOffset returns the byte offset of the cellNum-th cell.
func LeafNodeCellOffset(cellNum uint32) uint32 {
	return LeafNodeHeaderSize + cellNum*LeafNodeCellSize
}

func LeafNodeKey(page *pager.Page, cellNum uint32) uint32 {
	return getU32(page.Data[:], LeafNodeCellOffset(cellNum))
}

func SetLeafNodeKey(page *pager.Page, cellNum, key uint32) {
	putU32(page.Data[:], LeafNodeCellOffset(cellNum), key)
}

// LeafNodeValue returns the mutable row-sized slice for cellNum.
func LeafNodeValue(page *pager.Page, cellNum uint32) []byte {
	off := LeafNodeCellOffset(cellNum) + LeafNodeKeySize
	return page.Data[off : off+RowSize]
}

// LeafNodeCell returns the whole key+value slice for cellNum, for
// bulk-copying a cell without interpreting its contents.
func LeafNodeCell(page *pager.Page, cellNum uint32) []byte {
	off := LeafNodeCellOffset(cellNum)
	return page.Data[off : off+LeafNodeCellSize]
}

func InitializeLeaf(page *pager.Page) {
	SetNodeType(page, NodeTypeLeaf)
	SetLeafNodeNumCells(page, 0)
}

// --- internal node ---

func InternalNodeNumKeys(page *pager.Page) uint32 {
	return getU32(page.Data[:], InternalNodeNumKeysOffset)
}

func SetInternalNodeNumKeys(page *pager.Page, n uint32) {
	putU32(page.Data[:], InternalNodeNumKeysOffset, n)
}

func InternalNodeRightChild(page *pager.Page) uint32 {
	return getU32(page.Data[:], InternalNodeRightChildOffset)
}

func SetInternalNodeRightChild(page *pager.Page, pageNum uint32) {
	putU32(page.Data[:], InternalNodeRightChildOffset, pageNum)
}

func internalNodeCellOffset(cellNum uint32) uint32 {
	return InternalNodeHeaderSize + cellNum*InternalNodeCellSize
}

// InternalNodeChild returns the childNum-th child pointer. childNum may
// equal NumKeys, in which case it resolves to RightChild; anything
// beyond that returns an ordinary (non-fatal) corrupt-tree error.
func InternalNodeChild(page *pager.Page, childNum uint32) (uint32, error) {
	numKeys := InternalNodeNumKeys(page)
	switch {
	case childNum > numKeys:
		return 0, errors.Errorf("tried to access child %d > num_keys %d", childNum, numKeys)
	case childNum == numKeys:
		return InternalNodeRightChild(page), nil
	default:
		return getU32(page.Data[:], internalNodeCellOffset(childNum)), nil
	}
}

func SetInternalNodeChild(page *pager.Page, childNum, pageNum uint32) {
	putU32(page.Data[:], internalNodeCellOffset(childNum), pageNum)
}

func InternalNodeKey(page *pager.Page, keyNum uint32) uint32 {
	return getU32(page.Data[:], internalNodeCellOffset(keyNum)+InternalNodeChildSize)
}

func SetInternalNodeKey(page *pager.Page, keyNum, key uint32) {
	putU32(page.Data[:], internalNodeCellOffset(keyNum)+InternalNodeChildSize, key)
}

func InitializeInternal(page *pager.Page) {
	SetNodeType(page, NodeTypeInternal)
	SetNodeRoot(page, false)
	SetInternalNodeNumKeys(page, 0)
}

// GetNodeMaxKey returns, for a leaf, the key of its last cell; for an
// internal node, its last separator key (key(num_keys-1)), exactly as
// spec §4.1 defines it.
func GetNodeMaxKey(page *pager.Page) uint32 {
	switch GetNodeType(page) {
	case NodeTypeLeaf:
		return LeafNodeKey(page, LeafNodeNumCells(page)-1)
	default:
		return InternalNodeKey(page, InternalNodeNumKeys(page)-1)
	}
}
