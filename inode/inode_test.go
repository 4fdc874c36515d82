package inode_test

import (
	"testing"

	"github.com/nmeum/ext2img/image"
	"github.com/nmeum/ext2img/inode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImg() *image.Image {
	return image.New(make([]byte, image.TotalSize))
}

func TestReadWriteRoundTrip(t *testing.T) {
	img := newImg()
	in := inode.Inode{
		Mode:       image.ModeRegular | 0o644,
		Size:       4096,
		LinksCount: 1,
		Blocks:     8,
	}
	in.IBlock[0] = 10
	in.IBlock[1] = 11

	inode.Write(img, 12, in)
	got := inode.Read(img, 12)

	assert.Equal(t, in.Mode, got.Mode)
	assert.Equal(t, in.Size, got.Size)
	assert.Equal(t, in.LinksCount, got.LinksCount)
	assert.Equal(t, in.Blocks, got.Blocks)
	assert.EqualValues(t, 10, got.IBlock[0])
	assert.EqualValues(t, 11, got.IBlock[1])
	assert.True(t, got.IsRegular())
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, inode.Inode{Mode: image.ModeDir}.IsDir())
	assert.True(t, inode.Inode{Mode: image.ModeSymlink}.IsSymlink())
	assert.True(t, inode.Inode{Mode: image.ModeRegular}.IsRegular())
}

func TestBlocksOfDirectOnly(t *testing.T) {
	img := newImg()
	in := inode.Inode{Blocks: 6} // 3 data blocks
	in.IBlock[0] = 20
	in.IBlock[1] = 21
	in.IBlock[2] = 22

	refs := inode.BlocksOf(img, in)
	require.Len(t, refs, 3)
	for i, r := range refs {
		assert.Equal(t, inode.RoleDirect, r.Role)
		assert.Equal(t, i, r.Index)
	}
	assert.EqualValues(t, 20, refs[0].Number)
	assert.EqualValues(t, 22, refs[2].Number)
}

func TestBlocksOfWithIndirect(t *testing.T) {
	img := newImg()
	in := inode.Inode{Blocks: 2 * (12 + 1 + 2)} // 12 direct + indirect index + 2 payload
	for i := 0; i < 12; i++ {
		in.IBlock[i] = uint32(30 + i)
	}
	in.IBlock[image.IndirectBlockSlot] = 50
	ind := img.Indirect(50)
	ind.Set(0, 100)
	ind.Set(1, 101)

	refs := inode.BlocksOf(img, in)
	require.Len(t, refs, 15)
	for i := 0; i < 12; i++ {
		assert.Equal(t, inode.RoleDirect, refs[i].Role)
	}
	assert.Equal(t, inode.RoleIndirectIndex, refs[12].Role)
	assert.EqualValues(t, 50, refs[12].Number)
	assert.Equal(t, inode.RoleIndirectPayload, refs[13].Role)
	assert.EqualValues(t, 100, refs[13].Number)
	assert.Equal(t, inode.RoleIndirectPayload, refs[14].Role)
	assert.EqualValues(t, 101, refs[14].Number)
}
