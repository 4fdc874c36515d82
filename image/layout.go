// Package image provides a typed byte-buffer view over a fixed-layout ext2
// image: the superblock, the (single) group descriptor, the block and inode
// bitmaps, the inode table, and an addressable view of any data block.
//
// The image is a flat 131072-byte region. Nothing in this package opens a
// file, maps memory, or owns the buffer's lifetime; that is the caller's
// job.
package image

const (
	// BlockSize is the size of one block in bytes.
	BlockSize = 1024
	// TotalBlocks is the fixed number of blocks in an image.
	TotalBlocks = 128
	// TotalSize is the fixed size of an image in bytes.
	TotalSize = TotalBlocks * BlockSize

	// SuperblockOffset is the byte offset of the superblock.
	SuperblockOffset = 1024
	// GroupDescOffset is the byte offset of the (sole) group descriptor.
	GroupDescOffset = 2048

	// BlockBitmapBlock is the 1-indexed block number holding the block bitmap.
	BlockBitmapBlock = 3
	// InodeBitmapBlock is the 1-indexed block number holding the inode bitmap.
	InodeBitmapBlock = 4
	// InodeTableStartBlock is the 1-indexed first block of the inode table.
	InodeTableStartBlock = 5

	// InodeSize is the size in bytes of one on-disk inode record.
	InodeSize = 128
	// InodesPerBlock is the number of inode records that fit in one block.
	InodesPerBlock = BlockSize / InodeSize
	// NumInodeTableBlocks is how many blocks the inode table occupies.
	NumInodeTableBlocks = 4
	// TotalInodes is the fixed number of inode slots in the table.
	TotalInodes = NumInodeTableBlocks * InodesPerBlock

	// RootInode is the inode number of the root directory.
	RootInode = 2
	// FirstUserInode is the first inode number available for allocation;
	// inodes 1-11 are reserved.
	FirstUserInode = 12

	// DirectBlockCount is the number of direct block slots in i_block.
	DirectBlockCount = 12
	// IndirectBlockSlot is the index in i_block of the single-indirect slot.
	IndirectBlockSlot = 12
	// NumIBlockSlots is the total number of i_block slots (12 direct, 1
	// single-indirect, 2 unused by this core).
	NumIBlockSlots = 15
	// IndirectEntriesPerBlock is how many 32-bit block numbers fit in one
	// single-indirect block.
	IndirectEntriesPerBlock = BlockSize / 4

	// NameMax is the longest directory entry name, in bytes.
	NameMax = 255

	// DirentHeaderSize is the fixed-size portion of a directory entry,
	// before the name bytes: inode(4) + rec_len(2) + name_len(1) + file_type(1).
	DirentHeaderSize = 8
)

// Mode-kind nibbles stored in the high bits of i_mode, matching the real
// ext2 S_IFMT values.
const (
	ModeMask    = 0xF000
	ModeRegular = 0x8000
	ModeDir     = 0x4000
	ModeSymlink = 0xA000
)

// Directory entry file_type values.
const (
	FileTypeUnknown = 0
	FileTypeRegular = 1
	FileTypeDir     = 2
	FileTypeSymlink = 7
)
