package ops

import (
	"github.com/nmeum/ext2img/bitmap"
	"github.com/nmeum/ext2img/dirent"
	ext2errors "github.com/nmeum/ext2img/errors"
	"github.com/nmeum/ext2img/image"
	"github.com/nmeum/ext2img/inode"
	"github.com/nmeum/ext2img/path"
)

// Rm unlinks targetPath's directory entry. The target must not be a
// directory. Deallocation of the underlying inode and its data blocks
// only happens once the link count drops to zero.
func Rm(img *image.Image, targetPath string) error {
	if targetPath == "/" {
		return ext2errors.ErrIsADirectory
	}

	parent := path.ParentPath(targetPath)
	parentInum, err := path.Resolve(img, parent)
	if err != nil {
		return ext2errors.ErrNoEntry
	}

	name := path.Basename(targetPath)
	targetInum, err := dirent.Lookup(img, parentInum, name)
	if err != nil {
		return ext2errors.ErrNoEntry
	}

	targetInode := inode.Read(img, targetInum)
	if targetInode.IsDir() {
		return ext2errors.ErrIsADirectory
	}

	if err := dirent.Delete(img, parentInum, name); err != nil {
		return err
	}

	targetInode.LinksCount--
	if targetInode.LinksCount == 0 {
		targetInode.Dtime = deletionTime()

		alloc := bitmap.New(img)
		alloc.FreeInode(targetInum)
		for _, ref := range inode.BlocksOf(img, targetInode) {
			alloc.FreeBlock(ref.Number)
		}
	}
	inode.Write(img, targetInum, targetInode)
	return nil
}
