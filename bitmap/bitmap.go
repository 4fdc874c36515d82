// Package bitmap implements the bit-level allocator over the inode and
// block bitmaps: test/set/clear plus first-fit allocation that also
// maintains the redundant free counters in the superblock and group
// descriptor.
package bitmap

import (
	bb "github.com/boljen/go-bitmap"
	"github.com/nmeum/ext2img/image"
)

// IsSet reports whether bit (n-1) is set in bitmap, i.e. whether the
// 1-indexed inode/block number n is currently allocated.
func IsSet(raw []byte, n uint32) bool {
	return bb.Bitmap(raw).Get(int(n - 1))
}

// MarkUsed idempotently sets bit (n-1).
func MarkUsed(raw []byte, n uint32) {
	bb.Bitmap(raw).Set(int(n-1), true)
}

// MarkFree idempotently clears bit (n-1).
func MarkFree(raw []byte, n uint32) {
	bb.Bitmap(raw).Set(int(n-1), false)
}

// CountFree returns the number of zero bits in raw over [1, total].
func CountFree(raw []byte, total uint32) uint32 {
	free := uint32(0)
	bm := bb.Bitmap(raw)
	for i := uint32(0); i < total; i++ {
		if !bm.Get(int(i)) {
			free++
		}
	}
	return free
}

// Allocator wraps an image and performs first-fit allocation/deallocation of
// inodes and blocks, keeping the superblock, group descriptor, and bitmap
// counters in lockstep.
type Allocator struct {
	img *image.Image
}

// New returns an Allocator bound to img.
func New(img *image.Image) *Allocator {
	return &Allocator{img: img}
}

// AllocInode finds the first free inode number in [FirstUserInode,
// InodesCount], marks it used, zeroes its on-disk record, decrements both
// free-inode counters, and returns it. Returns 0 if none are free.
func (a *Allocator) AllocInode() uint32 {
	sb := a.img.Superblock()
	gd := a.img.GroupDesc()
	total := sb.InodesCount()
	raw := a.img.InodeBitmap()

	for inum := uint32(image.FirstUserInode); inum <= total; inum++ {
		if !IsSet(raw, inum) {
			MarkUsed(raw, inum)
			record := a.img.InodeBytes(inum)
			for i := range record {
				record[i] = 0
			}
			sb.SetFreeInodesCount(sb.FreeInodesCount() - 1)
			gd.SetFreeInodesCount(gd.FreeInodesCount() - 1)
			return inum
		}
	}
	return 0
}

// AllocBlock finds the first free block number in [1, BlocksCount), zeroes
// it, marks it used, decrements both free-block counters, and returns it.
// Returns 0 if none are free. Block 0 is the boot block and is never a
// candidate; block BlocksCount itself doesn't exist (blocks are numbered
// 0..BlocksCount-1), so the scan stops one short of the reported count.
// The fixed metadata blocks (super, group descriptor, bitmaps, inode
// table) are already marked used in a well-formed image, so first-fit
// naturally skips them.
func (a *Allocator) AllocBlock() uint32 {
	sb := a.img.Superblock()
	gd := a.img.GroupDesc()
	total := sb.BlocksCount()
	raw := a.img.BlockBitmap()

	for bnum := uint32(1); bnum < total; bnum++ {
		if !IsSet(raw, bnum) {
			block := a.img.Block(bnum)
			for i := range block {
				block[i] = 0
			}
			MarkUsed(raw, bnum)
			sb.SetFreeBlocksCount(sb.FreeBlocksCount() - 1)
			gd.SetFreeBlocksCount(gd.FreeBlocksCount() - 1)
			return bnum
		}
	}
	return 0
}

// ReuseInode marks an already-formatted inode record (one produced by a
// prior AllocInode, later freed, and now being restored) as used again,
// without zeroing its contents.
func (a *Allocator) ReuseInode(inum uint32) {
	sb := a.img.Superblock()
	gd := a.img.GroupDesc()
	MarkUsed(a.img.InodeBitmap(), inum)
	sb.SetFreeInodesCount(sb.FreeInodesCount() - 1)
	gd.SetFreeInodesCount(gd.FreeInodesCount() - 1)
}

// ReuseBlock marks an already-populated data block as used again, without
// zeroing its contents.
func (a *Allocator) ReuseBlock(bnum uint32) {
	sb := a.img.Superblock()
	gd := a.img.GroupDesc()
	MarkUsed(a.img.BlockBitmap(), bnum)
	sb.SetFreeBlocksCount(sb.FreeBlocksCount() - 1)
	gd.SetFreeBlocksCount(gd.FreeBlocksCount() - 1)
}

// FreeInode clears inum's bit and increments both free-inode counters.
func (a *Allocator) FreeInode(inum uint32) {
	sb := a.img.Superblock()
	gd := a.img.GroupDesc()
	MarkFree(a.img.InodeBitmap(), inum)
	sb.SetFreeInodesCount(sb.FreeInodesCount() + 1)
	gd.SetFreeInodesCount(gd.FreeInodesCount() + 1)
}

// FreeBlock clears bnum's bit and increments both free-block counters.
func (a *Allocator) FreeBlock(bnum uint32) {
	sb := a.img.Superblock()
	gd := a.img.GroupDesc()
	MarkFree(a.img.BlockBitmap(), bnum)
	sb.SetFreeBlocksCount(sb.FreeBlocksCount() + 1)
	gd.SetFreeBlocksCount(gd.FreeBlocksCount() + 1)
}
