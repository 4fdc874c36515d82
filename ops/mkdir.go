package ops

import (
	"github.com/nmeum/ext2img/bitmap"
	"github.com/nmeum/ext2img/dirent"
	ext2errors "github.com/nmeum/ext2img/errors"
	"github.com/nmeum/ext2img/image"
	"github.com/nmeum/ext2img/inode"
	"github.com/nmeum/ext2img/path"
)

// Mkdir creates a new, empty directory at destPath. The root path itself
// always exists, so mkdir on "/" is refused as ErrExists rather than
// attempted.
func Mkdir(img *image.Image, destPath string) error {
	if destPath == "/" {
		return ext2errors.ErrExists
	}

	parent := path.ParentPath(destPath)
	parentInum, err := path.Resolve(img, parent)
	if err != nil {
		return ext2errors.ErrNoEntry
	}

	name := path.Basename(destPath)
	if _, err := dirent.Lookup(img, parentInum, name); err == nil {
		return ext2errors.ErrExists
	}

	alloc := bitmap.New(img)
	newInum := alloc.AllocInode()
	if newInum == 0 {
		return ext2errors.ErrOutOfSpace
	}

	in := inode.Inode{
		Mode:       image.ModeDir,
		Size:       image.BlockSize,
		LinksCount: 2,
		Blocks:     2,
	}

	if err := dirent.Insert(img, parentInum, dirent.NewEntry{
		Inum: newInum, FileType: image.FileTypeDir, Name: name,
	}); err != nil {
		alloc.FreeInode(newInum)
		return err
	}

	bnum := alloc.AllocBlock()
	if bnum == 0 {
		return ext2errors.ErrOutOfSpace
	}
	in.IBlock[0] = bnum
	inode.Write(img, newInum, in)

	if err := dirent.Insert(img, newInum, dirent.NewEntry{
		Inum: newInum, FileType: image.FileTypeDir, Name: ".",
	}); err != nil {
		return err
	}
	if err := dirent.Insert(img, newInum, dirent.NewEntry{
		Inum: parentInum, FileType: image.FileTypeDir, Name: "..",
	}); err != nil {
		return err
	}

	gd := img.GroupDesc()
	gd.SetUsedDirsCount(gd.UsedDirsCount() + 1)

	parentIn := inode.Read(img, parentInum)
	parentIn.LinksCount++
	inode.Write(img, parentInum, parentIn)

	return nil
}
