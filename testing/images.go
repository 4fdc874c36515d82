// Package testing builds small, well-formed synthetic ext2 images in
// memory for use by the rest of the module's test suites; images are
// fixed at 128 KiB, cheap enough to build fresh per test.
package testing

import (
	"io"

	"github.com/xaionaro-go/bytesextra"

	"github.com/nmeum/ext2img/bitmap"
	"github.com/nmeum/ext2img/dirent"
	"github.com/nmeum/ext2img/image"
	"github.com/nmeum/ext2img/inode"
)

// metadataBlocks is the number of blocks occupied by the superblock, group
// descriptor, both bitmaps, and the inode table: blocks 1 through 8
// inclusive.
const metadataBlocks = 8

// NewImage returns a freshly formatted 128 KiB image: superblock and group
// descriptor counters set, metadata blocks and reserved inodes marked
// used, and a root directory (inode 2) holding "." and "..".
func NewImage() *image.Image {
	img := image.New(make([]byte, image.TotalSize))

	sb := img.Superblock()
	gd := img.GroupDesc()
	sb.SetInodesCount(image.TotalInodes)
	sb.SetBlocksCount(image.TotalBlocks)

	for b := uint32(1); b <= metadataBlocks; b++ {
		bitmap.MarkUsed(img.BlockBitmap(), b)
	}
	for i := uint32(1); i < image.FirstUserInode; i++ {
		bitmap.MarkUsed(img.InodeBitmap(), i)
	}
	// Block 0 is the boot block and is never allocatable, so only blocks
	// 1..TotalBlocks-1 count toward the free total.
	sb.SetFreeBlocksCount(image.TotalBlocks - 1 - metadataBlocks)
	sb.SetFreeInodesCount(image.TotalInodes - (image.FirstUserInode - 1))
	gd.SetFreeBlocksCount(uint16(sb.FreeBlocksCount()))
	gd.SetFreeInodesCount(uint16(sb.FreeInodesCount()))

	alloc := bitmap.New(img)
	rootBlock := alloc.AllocBlock()

	root := inode.Inode{
		Mode:       image.ModeDir,
		Size:       image.BlockSize,
		LinksCount: 2,
		Blocks:     2,
	}
	root.IBlock[0] = rootBlock
	inode.Write(img, image.RootInode, root)

	mustInsert(img, image.RootInode, dirent.NewEntry{Inum: image.RootInode, FileType: image.FileTypeDir, Name: "."})
	mustInsert(img, image.RootInode, dirent.NewEntry{Inum: image.RootInode, FileType: image.FileTypeDir, Name: ".."})
	gd.SetUsedDirsCount(1)

	return img
}

func mustInsert(img *image.Image, dirInum uint32, ent dirent.NewEntry) {
	if err := dirent.Insert(img, dirInum, ent); err != nil {
		panic(err)
	}
}

// Seeker wraps img's backing bytes as an io.ReadWriteSeeker, for exercising
// code that loads an image from a stream rather than a byte slice.
func Seeker(img *image.Image) io.ReadWriteSeeker {
	return bytesextra.NewReadWriteSeeker(img.Bytes())
}
