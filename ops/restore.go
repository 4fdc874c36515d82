package ops

import (
	"github.com/nmeum/ext2img/dirent"
	ext2errors "github.com/nmeum/ext2img/errors"
	"github.com/nmeum/ext2img/image"
	"github.com/nmeum/ext2img/path"
)

// Restore recovers a previously removed entry named by targetPath.
// targetPath's parent must exist and not already contain a live entry
// with that name; the recovered entry's inode and data blocks must not
// have been reused since deletion, or the restore fails as
// ErrNotRecoverable.
func Restore(img *image.Image, targetPath string) (uint32, error) {
	if targetPath == "/" {
		return 0, ext2errors.ErrIsADirectory
	}

	parent := path.ParentPath(targetPath)
	parentInum, err := path.Resolve(img, parent)
	if err != nil {
		return 0, ext2errors.ErrNoEntry
	}

	name := path.Basename(targetPath)
	return dirent.Restore(img, parentInum, name)
}
