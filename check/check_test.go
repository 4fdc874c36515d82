package check_test

import (
	"testing"

	"github.com/nmeum/ext2img/bitmap"
	"github.com/nmeum/ext2img/check"
	"github.com/nmeum/ext2img/dirent"
	"github.com/nmeum/ext2img/image"
	"github.com/nmeum/ext2img/inode"
	"github.com/nmeum/ext2img/ops"
	exttest "github.com/nmeum/ext2img/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunOnCleanImageFindsNothing(t *testing.T) {
	img := exttest.NewImage()
	require.NoError(t, ops.Mkdir(img, "/sub"))
	require.NoError(t, ops.CopyIn(img, []byte("hi"), "/sub", "f.txt"))

	r := check.Run(img)
	assert.Zero(t, r.Total)
	assert.Equal(t, "No file system inconsistencies detected!", r.Summary())
}

func TestRunFixesSuperblockFreeInodeDrift(t *testing.T) {
	img := exttest.NewImage()
	sb := img.Superblock()
	sb.SetFreeInodesCount(sb.FreeInodesCount() + 5)

	r := check.Run(img)
	assert.EqualValues(t, 5, r.Total)
	assert.NotNil(t, r.Fixes)
	assert.Contains(t, r.Summary(), "5 file system inconsistencies repaired")
}

func TestRunFixesUnmarkedInode(t *testing.T) {
	img := exttest.NewImage()
	require.NoError(t, ops.CopyIn(img, []byte("hi"), "/", "f.txt"))
	inum := lookup(t, img, image.RootInode, "f.txt")

	bitmap.New(img).FreeInode(inum)

	r := check.Run(img)
	assert.True(t, bitmap.IsSet(img.InodeBitmap(), inum))
	assert.Greater(t, r.Total, 0)
}

func TestRunResetsStaleDtime(t *testing.T) {
	img := exttest.NewImage()
	require.NoError(t, ops.CopyIn(img, []byte("hi"), "/", "f.txt"))
	inum := lookup(t, img, image.RootInode, "f.txt")

	in := inode.Read(img, inum)
	in.Dtime = 99999
	inode.Write(img, inum, in)

	r := check.Run(img)
	assert.Zero(t, inode.Read(img, inum).Dtime)
	assert.Greater(t, r.Total, 0)
}

func TestRunFixesMismatchedFileType(t *testing.T) {
	img := exttest.NewImage()
	require.NoError(t, ops.Mkdir(img, "/sub"))

	corruptFileType(t, img, image.RootInode, "sub", image.FileTypeRegular)

	r := check.Run(img)
	assert.Greater(t, r.Total, 0)

	var fixed uint8
	err := dirent.Walk(img, image.RootInode, func(e dirent.Entry) {
		if e.Name == "sub" {
			fixed = e.FileType
		}
	})
	require.NoError(t, err)
	assert.Equal(t, uint8(image.FileTypeDir), fixed)
}

func TestRunFixesUnmarkedBlocks(t *testing.T) {
	img := exttest.NewImage()
	require.NoError(t, ops.CopyIn(img, []byte("some data"), "/", "f.txt"))
	inum := lookup(t, img, image.RootInode, "f.txt")

	in := inode.Read(img, inum)
	bitmap.New(img).FreeBlock(in.IBlock[0])

	r := check.Run(img)
	assert.True(t, bitmap.IsSet(img.BlockBitmap(), in.IBlock[0]))
	assert.Greater(t, r.Total, 0)
}

func lookup(t *testing.T, img *image.Image, dirInum uint32, name string) uint32 {
	t.Helper()
	var found uint32
	err := dirent.Walk(img, dirInum, func(e dirent.Entry) {
		if e.Name == name {
			found = e.Inum
		}
	})
	require.NoError(t, err)
	require.NotZero(t, found)
	return found
}

func corruptFileType(t *testing.T, img *image.Image, dirInum uint32, name string, ft uint8) {
	t.Helper()
	err := dirent.Walk(img, dirInum, func(e dirent.Entry) {
		if e.Name == name {
			e.SetFileType(ft)
		}
	})
	require.NoError(t, err)
}
