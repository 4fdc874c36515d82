package ops

import (
	"math"

	"github.com/noxer/bytewriter"

	"github.com/nmeum/ext2img/bitmap"
	"github.com/nmeum/ext2img/dirent"
	ext2errors "github.com/nmeum/ext2img/errors"
	"github.com/nmeum/ext2img/image"
	"github.com/nmeum/ext2img/inode"
	"github.com/nmeum/ext2img/path"
)

// CopyIn creates a new regular file at destPath holding content: if
// destPath names an existing directory, the file is created inside it
// under srcName; if destPath names an existing non-directory, that is
// EEXIST; if destPath doesn't exist, its parent must be a directory and
// destPath's last component becomes the new file's name.
func CopyIn(img *image.Image, content []byte, destPath, srcName string) error {
	destInum, destName, err := resolveCreateTarget(img, destPath, srcName)
	if err != nil {
		return err
	}

	if _, err := dirent.Lookup(img, destInum, destName); err == nil {
		return ext2errors.ErrExists
	}

	alloc := bitmap.New(img)
	newInum := alloc.AllocInode()
	if newInum == 0 {
		return ext2errors.ErrOutOfSpace
	}

	blocksNeeded := numDataBlocks(len(content))
	in := inode.Inode{
		Mode:       image.ModeRegular | 0o644,
		Size:       uint32(len(content)),
		LinksCount: 1,
		Blocks:     uint32(blocksNeeded) * 2,
	}

	if err := writeFileData(img, alloc, &in, content); err != nil {
		return err
	}
	inode.Write(img, newInum, in)

	if err := dirent.Insert(img, destInum, dirent.NewEntry{
		Inum: newInum, FileType: image.FileTypeRegular, Name: destName,
	}); err != nil {
		return err
	}
	return nil
}

// resolveCreateTarget resolves destPath into the directory inode and final
// name a new file (or link) should be created under: destPath already
// exists and is a directory (use fallbackName inside it), or destPath
// doesn't exist and its parent does (use destPath's own last component
// inside the parent).
func resolveCreateTarget(img *image.Image, destPath, fallbackName string) (uint32, string, error) {
	if existing, err := path.Resolve(img, destPath); err == nil {
		in := inode.Read(img, existing)
		if !in.IsDir() {
			return 0, "", ext2errors.ErrExists
		}
		return existing, fallbackName, nil
	}

	parent := path.ParentPath(destPath)
	parentInum, err := path.Resolve(img, parent)
	if err != nil {
		return 0, "", ext2errors.ErrNoEntry
	}
	return parentInum, path.Basename(destPath), nil
}

// numDataBlocks computes the number of data blocks content needs: files
// over 12 KiB need one extra block for the single indirect index.
func numDataBlocks(size int) int {
	blocks := int(math.Ceil(float64(size) / float64(image.BlockSize)))
	if size > image.DirectBlockCount*image.BlockSize {
		blocks++
	}
	return blocks
}

// writeFileData allocates and fills the data blocks (direct, then single
// indirect) needed to hold content, writing in.IBlock as it goes.
func writeFileData(img *image.Image, alloc *bitmap.Allocator, in *inode.Inode, content []byte) error {
	var indirect image.IndirectBlock
	indirectAllocated := false
	indirectIdx := 0

	total := 0
	for total < len(content) {
		chunk := content[total:]
		if len(chunk) > image.BlockSize {
			chunk = chunk[:image.BlockSize]
		}

		blockIdx := total / image.BlockSize
		if blockIdx < image.DirectBlockCount {
			bnum := alloc.AllocBlock()
			if bnum == 0 {
				return ext2errors.ErrOutOfSpace
			}
			in.IBlock[blockIdx] = bnum
			writeChunk(img.Block(bnum), chunk)
		} else {
			if !indirectAllocated {
				bnum := alloc.AllocBlock()
				if bnum == 0 {
					return ext2errors.ErrOutOfSpace
				}
				in.IBlock[image.IndirectBlockSlot] = bnum
				indirect = img.Indirect(bnum)
				indirectAllocated = true
			}
			bnum := alloc.AllocBlock()
			if bnum == 0 {
				return ext2errors.ErrOutOfSpace
			}
			writeChunk(img.Block(bnum), chunk)
			indirect.Set(indirectIdx, bnum)
			indirectIdx++
		}
		total += len(chunk)
	}
	return nil
}

func writeChunk(block []byte, chunk []byte) {
	w := bytewriter.New(block)
	w.Write(chunk)
}
