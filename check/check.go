// Package check implements the filesystem consistency checker: reconciling
// the superblock/group-descriptor free counters against the bitmaps, then
// walking the directory tree from the root to catch mismatched entry
// types, unmarked inodes/blocks, and stale deletion timestamps.
package check

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/nmeum/ext2img/bitmap"
	"github.com/nmeum/ext2img/dirent"
	"github.com/nmeum/ext2img/image"
	"github.com/nmeum/ext2img/inode"
)

// Result accumulates every repair made during a Run, in the order they
// were found.
type Result struct {
	Fixes *multierror.Error
	Total int
}

// Summary renders the one-line totals message printed at the end of a run.
func (r *Result) Summary() string {
	if r.Total > 0 {
		return fmt.Sprintf("%d file system inconsistencies repaired!", r.Total)
	}
	return "No file system inconsistencies detected!"
}

// fix records a single repair, counting as n inconsistencies (checkBlocks
// can report more than one in a single line).
func (r *Result) fix(n int, format string, args ...interface{}) {
	r.Fixes = multierror.Append(r.Fixes, fmt.Errorf("Fixed: "+format, args...))
	r.Total += n
}

// Run checks and repairs img in place, returning a report of every fix
// applied.
func Run(img *image.Image) *Result {
	r := &Result{}

	sb := img.Superblock()
	gd := img.GroupDesc()

	bitmapFreeInodes := bitmap.CountFree(img.InodeBitmap(), sb.InodesCount())
	// Block 0 is the boot block and block BlocksCount doesn't exist, so
	// only blocks 1..BlocksCount-1 are ever tracked as allocatable.
	bitmapFreeBlocks := bitmap.CountFree(img.BlockBitmap(), sb.BlocksCount()-1)

	if sb.FreeInodesCount() != bitmapFreeInodes {
		diff := absDiff(sb.FreeInodesCount(), bitmapFreeInodes)
		r.fix(int(diff), "superblock's free inodes was off by %d compared to the bitmap", diff)
		sb.SetFreeInodesCount(bitmapFreeInodes)
	}
	if sb.FreeBlocksCount() != bitmapFreeBlocks {
		diff := absDiff(sb.FreeBlocksCount(), bitmapFreeBlocks)
		r.fix(int(diff), "superblock's free blocks was off by %d compared to the bitmap", diff)
		sb.SetFreeBlocksCount(bitmapFreeBlocks)
	}
	if uint32(gd.FreeInodesCount()) != bitmapFreeInodes {
		diff := absDiff(uint32(gd.FreeInodesCount()), bitmapFreeInodes)
		r.fix(int(diff), "block group's free inodes was off by %d compared to the bitmap", diff)
		gd.SetFreeInodesCount(uint16(bitmapFreeInodes))
	}
	if uint32(gd.FreeBlocksCount()) != bitmapFreeBlocks {
		diff := absDiff(uint32(gd.FreeBlocksCount()), bitmapFreeBlocks)
		r.fix(int(diff), "block group's free blocks was off by %d compared to the bitmap", diff)
		gd.SetFreeBlocksCount(uint16(bitmapFreeBlocks))
	}

	checkDirectory(img, r, image.RootInode)
	return r
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// checkDirectory walks dirInum's live entries, skipping ".." (to avoid
// re-checking the parent) and recursing into real subdirectories; "."
// and non-directory entries are checked directly.
func checkDirectory(img *image.Image, r *Result, dirInum uint32) {
	dirent.Walk(img, dirInum, func(e dirent.Entry) {
		if e.Name == ".." {
			return
		}
		if e.Name == "." || e.FileType != image.FileTypeDir {
			checkType(img, r, e)
			checkInode(img, r, e.Inum)
			checkDtime(img, r, e.Inum)
			checkBlocks(img, r, e.Inum)
			return
		}
		checkDirectory(img, r, e.Inum)
	})
}

func checkType(img *image.Image, r *Result, e dirent.Entry) {
	target := inode.Read(img, e.Inum)
	want := fileTypeForKind(target.Kind())
	if want != e.FileType {
		e.SetFileType(want)
		r.fix(1, "Entry type vs inode mismatch: inode[%d]", e.Inum)
	}
}

func fileTypeForKind(kind uint16) uint8 {
	switch kind {
	case image.ModeRegular:
		return image.FileTypeRegular
	case image.ModeDir:
		return image.FileTypeDir
	case image.ModeSymlink:
		return image.FileTypeSymlink
	default:
		return image.FileTypeUnknown
	}
}

func checkInode(img *image.Image, r *Result, inum uint32) {
	if !bitmap.IsSet(img.InodeBitmap(), inum) {
		bitmap.New(img).ReuseInode(inum)
		r.fix(1, "inode[%d] not marked as in-use", inum)
	}
}

func checkDtime(img *image.Image, r *Result, inum uint32) {
	in := inode.Read(img, inum)
	if in.Dtime != 0 {
		in.Dtime = 0
		inode.Write(img, inum, in)
		r.fix(1, "valid inode marked for deletion: [%d]", inum)
	}
}

func checkBlocks(img *image.Image, r *Result, inum uint32) {
	in := inode.Read(img, inum)
	alloc := bitmap.New(img)
	errs := 0
	for _, ref := range inode.BlocksOf(img, in) {
		if !bitmap.IsSet(img.BlockBitmap(), ref.Number) {
			alloc.ReuseBlock(ref.Number)
			errs++
		}
	}
	if errs > 0 {
		r.fix(errs, "%d in-use data blocks not marked in data bitmap for inode: [%d]", errs, inum)
	}
}
