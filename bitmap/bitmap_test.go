package bitmap_test

import (
	"testing"

	"github.com/nmeum/ext2img/bitmap"
	"github.com/nmeum/ext2img/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImage(t *testing.T, totalInodes, totalBlocks uint32, usedBlocksMask []uint32) *image.Image {
	img := image.New(make([]byte, image.TotalSize))
	sb := img.Superblock()
	gd := img.GroupDesc()
	sb.SetInodesCount(totalInodes)
	sb.SetBlocksCount(totalBlocks)
	sb.SetFreeInodesCount(totalInodes - (image.FirstUserInode - 1))
	sb.SetFreeBlocksCount(totalBlocks - uint32(len(usedBlocksMask)))
	gd.SetFreeInodesCount(uint16(sb.FreeInodesCount()))
	gd.SetFreeBlocksCount(uint16(sb.FreeBlocksCount()))

	for i := uint32(1); i < image.FirstUserInode; i++ {
		bitmap.MarkUsed(img.InodeBitmap(), i)
	}
	for _, b := range usedBlocksMask {
		bitmap.MarkUsed(img.BlockBitmap(), b)
	}
	_ = require.New(t)
	return img
}

func TestAllocInodeFirstFit(t *testing.T) {
	img := newTestImage(t, 32, 128, []uint32{1, 2, 3, 4})
	alloc := bitmap.New(img)

	inum := alloc.AllocInode()
	assert.EqualValues(t, image.FirstUserInode, inum)
	assert.True(t, bitmap.IsSet(img.InodeBitmap(), inum))
	assert.EqualValues(t, 32-image.FirstUserInode, img.Superblock().FreeInodesCount())
	assert.EqualValues(t, 32-image.FirstUserInode, img.GroupDesc().FreeInodesCount())
}

func TestAllocBlockSkipsReserved(t *testing.T) {
	img := newTestImage(t, 32, 128, []uint32{1, 2, 3, 4})
	alloc := bitmap.New(img)

	bnum := alloc.AllocBlock()
	assert.EqualValues(t, 5, bnum)
	assert.True(t, bitmap.IsSet(img.BlockBitmap(), bnum))
}

func TestAllocBlockZeroesContent(t *testing.T) {
	img := newTestImage(t, 32, 128, []uint32{1, 2, 3, 4})
	// Dirty a free block before allocating it.
	dirty := img.Block(5)
	dirty[10] = 0xFF

	alloc := bitmap.New(img)
	bnum := alloc.AllocBlock()
	require.EqualValues(t, 5, bnum)
	assert.Equal(t, byte(0), img.Block(5)[10])
}

func TestAllocExhaustionReturnsZero(t *testing.T) {
	used := make([]uint32, 0, 128)
	for i := uint32(1); i <= 128; i++ {
		used = append(used, i)
	}
	img := newTestImage(t, 32, 128, used)
	alloc := bitmap.New(img)
	assert.EqualValues(t, 0, alloc.AllocBlock())
}

func TestFreeInodeAndBlockRestoresCounters(t *testing.T) {
	img := newTestImage(t, 32, 128, []uint32{1, 2, 3, 4})
	alloc := bitmap.New(img)

	inum := alloc.AllocInode()
	bnum := alloc.AllocBlock()
	alloc.FreeInode(inum)
	alloc.FreeBlock(bnum)

	assert.False(t, bitmap.IsSet(img.InodeBitmap(), inum))
	assert.False(t, bitmap.IsSet(img.BlockBitmap(), bnum))
	assert.EqualValues(t, 32-(image.FirstUserInode-1), img.Superblock().FreeInodesCount())
}

func TestReuseMarksUsedWithoutZeroing(t *testing.T) {
	img := newTestImage(t, 32, 128, []uint32{1, 2, 3, 4})
	alloc := bitmap.New(img)

	bnum := alloc.AllocBlock()
	img.Block(bnum)[0] = 0xAB
	alloc.FreeBlock(bnum)

	alloc.ReuseBlock(bnum)
	assert.True(t, bitmap.IsSet(img.BlockBitmap(), bnum))
	assert.Equal(t, byte(0xAB), img.Block(bnum)[0])
}

func TestCountFree(t *testing.T) {
	img := newTestImage(t, 32, 128, []uint32{1, 2, 3, 4})
	assert.EqualValues(t, 128-4, bitmap.CountFree(img.BlockBitmap(), 128))
}
