package ops

import (
	"github.com/nmeum/ext2img/bitmap"
	"github.com/nmeum/ext2img/dirent"
	ext2errors "github.com/nmeum/ext2img/errors"
	"github.com/nmeum/ext2img/image"
	"github.com/nmeum/ext2img/inode"
	"github.com/nmeum/ext2img/path"
)

// Link creates a directory entry at destPath pointing at the file or
// symlink named by srcPath. Hardlinking a directory is refused with
// ErrIsADirectory. When symbolic is true, a new symlink inode is created
// instead, holding srcPath verbatim as its single block of target text.
func Link(img *image.Image, srcPath, destPath string, symbolic bool) error {
	srcInum, err := path.Resolve(img, srcPath)
	if err != nil {
		return ext2errors.ErrNoEntry
	}
	srcInode := inode.Read(img, srcInum)
	if srcInode.IsDir() && !symbolic {
		return ext2errors.ErrIsADirectory
	}

	destInum, linkName, err := resolveCreateTarget(img, destPath, path.Basename(srcPath))
	if err != nil {
		return err
	}
	if _, err := dirent.Lookup(img, destInum, linkName); err == nil {
		return ext2errors.ErrExists
	}

	if symbolic {
		return createSymlink(img, srcPath, destInum, linkName)
	}
	return createHardLink(img, srcInum, srcInode, destInum, linkName)
}

func createHardLink(img *image.Image, srcInum uint32, srcInode inode.Inode, destInum uint32, name string) error {
	fileType := uint8(image.FileTypeSymlink)
	if srcInode.IsRegular() {
		fileType = image.FileTypeRegular
	}

	if err := dirent.Insert(img, destInum, dirent.NewEntry{
		Inum: srcInum, FileType: fileType, Name: name,
	}); err != nil {
		return err
	}

	srcInode.LinksCount++
	inode.Write(img, srcInum, srcInode)
	return nil
}

func createSymlink(img *image.Image, targetPath string, destInum uint32, name string) error {
	alloc := bitmap.New(img)
	newInum := alloc.AllocInode()
	if newInum == 0 {
		return ext2errors.ErrOutOfSpace
	}
	bnum := alloc.AllocBlock()
	if bnum == 0 {
		return ext2errors.ErrOutOfSpace
	}

	block := img.Block(bnum)
	copy(block, targetPath)

	in := inode.Inode{
		Mode:       image.ModeSymlink,
		Size:       image.BlockSize,
		LinksCount: 1,
		Blocks:     2,
	}
	in.IBlock[0] = bnum
	inode.Write(img, newInum, in)

	return dirent.Insert(img, destInum, dirent.NewEntry{
		Inum: newInum, FileType: image.FileTypeSymlink, Name: name,
	})
}
