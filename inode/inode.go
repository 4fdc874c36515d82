// Package inode implements the inode accessor: fixed-layout inode record
// read/write, and the block iterator shared by rm, restore, and the
// consistency checker.
package inode

import (
	"encoding/binary"

	"github.com/nmeum/ext2img/image"
)

// Inode is the in-memory form of a 128-byte on-disk inode record.
type Inode struct {
	Mode       uint16
	Size       uint32
	LinksCount uint16
	Blocks     uint32 // in 512-byte sectors; each 1 KiB block counts as 2
	Dtime      uint32
	IBlock     [image.NumIBlockSlots]uint32
}

// Kind returns the high-nibble object kind of Mode.
func (in Inode) Kind() uint16 {
	return in.Mode & image.ModeMask
}

func (in Inode) IsDir() bool {
	return in.Kind() == image.ModeDir
}

func (in Inode) IsRegular() bool {
	return in.Kind() == image.ModeRegular
}

func (in Inode) IsSymlink() bool {
	return in.Kind() == image.ModeSymlink
}

// IsDeleted reports whether the inode's deletion timestamp is set.
func (in Inode) IsDeleted() bool {
	return in.Dtime != 0
}

// Read parses the inum-th (1-indexed) inode record out of img.
func Read(img *image.Image, inum uint32) Inode {
	raw := img.InodeBytes(inum)
	var in Inode
	in.Mode = binary.LittleEndian.Uint16(raw[0:2])
	in.Size = binary.LittleEndian.Uint32(raw[4:8])
	in.Dtime = binary.LittleEndian.Uint32(raw[20:24])
	in.LinksCount = binary.LittleEndian.Uint16(raw[26:28])
	in.Blocks = binary.LittleEndian.Uint32(raw[28:32])
	for i := 0; i < image.NumIBlockSlots; i++ {
		off := 40 + i*4
		in.IBlock[i] = binary.LittleEndian.Uint32(raw[off : off+4])
	}
	return in
}

// Write serializes in into the inum-th (1-indexed) inode record in img.
func Write(img *image.Image, inum uint32, in Inode) {
	raw := img.InodeBytes(inum)
	binary.LittleEndian.PutUint16(raw[0:2], in.Mode)
	binary.LittleEndian.PutUint32(raw[4:8], in.Size)
	binary.LittleEndian.PutUint32(raw[20:24], in.Dtime)
	binary.LittleEndian.PutUint16(raw[26:28], in.LinksCount)
	binary.LittleEndian.PutUint32(raw[28:32], in.Blocks)
	for i := 0; i < image.NumIBlockSlots; i++ {
		off := 40 + i*4
		binary.LittleEndian.PutUint32(raw[off:off+4], in.IBlock[i])
	}
}

// BlockRole classifies a block number yielded by BlocksOf.
type BlockRole int

const (
	RoleDirect BlockRole = iota
	RoleIndirectIndex
	RoleIndirectPayload
)

// BlockRef is one block yielded by BlocksOf.
type BlockRef struct {
	Number uint32
	Role   BlockRole
	// Index is the direct slot index for RoleDirect, or the payload slot
	// index for RoleIndirectPayload. Unused for RoleIndirectIndex.
	Index int
}

// BlocksOf enumerates the data blocks reachable from in: direct slots
// first, then (if needed) the indirect index block itself exactly once,
// followed by its payload entries. Enumeration stops once i_blocks/2
// entries have been produced.
func BlocksOf(img *image.Image, in Inode) []BlockRef {
	refs := make([]BlockRef, 0, in.Blocks/2)
	numBlocks := in.Blocks / 2
	blockIdx := 0
	indirectIdx := 0
	var indirectView image.IndirectBlock

	for numBlocks > 0 {
		if blockIdx < image.DirectBlockCount {
			refs = append(refs, BlockRef{
				Number: in.IBlock[blockIdx],
				Role:   RoleDirect,
				Index:  blockIdx,
			})
			blockIdx++
			numBlocks--
			continue
		}

		if indirectIdx == 0 {
			indirectNum := in.IBlock[image.IndirectBlockSlot]
			indirectView = img.Indirect(indirectNum)
			refs = append(refs, BlockRef{Number: indirectNum, Role: RoleIndirectIndex})
			numBlocks--
			if numBlocks == 0 {
				break
			}
		}

		payload := indirectView.Get(indirectIdx)
		refs = append(refs, BlockRef{Number: payload, Role: RoleIndirectPayload, Index: indirectIdx})
		indirectIdx++
		numBlocks--
	}
	return refs
}
