// Package dirent implements the directory engine: lookup, insert, delete,
// and restore of directory entries within a directory inode's data
// blocks, including the rec_len/slack bookkeeping and hidden (deleted)
// entry chain that restore depends on.
package dirent

import (
	"github.com/nmeum/ext2img/bitmap"
	ext2errors "github.com/nmeum/ext2img/errors"
	"github.com/nmeum/ext2img/image"
	"github.com/nmeum/ext2img/inode"
)

// minEntrySize is the smallest footprint any real entry can have: an
// 8-byte header plus a 1-byte name, aligned up to 4 bytes.
const minEntrySize = 12

// NewEntry describes a directory entry to be inserted.
type NewEntry struct {
	Inum     uint32
	FileType uint8
	Name     string
}

// dirBlocks returns the populated data block numbers of a directory inode,
// in order. Directory growth only ever uses the direct slots, but a
// well-formed directory with indirect blocks (however that came to be) is
// still walked correctly here.
func dirBlocks(img *image.Image, in inode.Inode) []uint32 {
	blocks := make([]uint32, 0, image.DirectBlockCount)
	for i := 0; i < image.DirectBlockCount; i++ {
		b := in.IBlock[i]
		if b == 0 {
			return blocks
		}
		blocks = append(blocks, b)
	}
	indirectNum := in.IBlock[image.IndirectBlockSlot]
	if indirectNum == 0 {
		return blocks
	}
	ind := img.Indirect(indirectNum)
	for i := 0; i < image.IndirectEntriesPerBlock; i++ {
		b := ind.Get(i)
		if b == 0 {
			break
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// Entry is a decoded top-level (live) directory entry, exposed via Walk for
// callers such as the consistency checker that need to inspect and
// possibly repair entries in place.
type Entry struct {
	Inum     uint32
	Name     string
	FileType uint8

	block []byte
	off   int
}

// SetFileType rewrites this entry's on-disk file_type byte in place.
func (e Entry) SetFileType(ft uint8) {
	e.block[e.off+7] = ft
}

// Walk invokes fn for every live (non-hidden) top-level entry in dirInum's
// directory data, in block/offset order. Entries embedded in another
// entry's slack (the hidden chain) are deliberately not visited.
func Walk(img *image.Image, dirInum uint32, fn func(Entry)) error {
	dirIn := inode.Read(img, dirInum)
	if !dirIn.IsDir() {
		return ext2errors.ErrNoEntry
	}

	for _, bnum := range dirBlocks(img, dirIn) {
		block := img.Block(bnum)
		off := 0
		for off < image.BlockSize {
			e := readEntryAt(block, off)
			if e.Inum != 0 {
				fn(Entry{Inum: e.Inum, Name: e.Name, FileType: e.FileType, block: block, off: off})
			}
			off += int(e.RecLen)
		}
	}
	return nil
}

// Lookup searches dirInum's entries for a live (non-hidden) entry named
// name and returns its inode number.
func Lookup(img *image.Image, dirInum uint32, name string) (uint32, error) {
	dirIn := inode.Read(img, dirInum)
	if !dirIn.IsDir() {
		return 0, ext2errors.ErrNoEntry
	}

	for _, bnum := range dirBlocks(img, dirIn) {
		block := img.Block(bnum)
		off := 0
		for off < image.BlockSize {
			e := readEntryAt(block, off)
			if e.Inum != 0 && nameMatches(e, name) {
				return e.Inum, nil
			}
			off += int(e.RecLen)
		}
	}
	return 0, ext2errors.ErrNoEntry
}

// findLastEntry returns the offset and decoded form of the block's final
// chain entry: the one whose span reaches exactly to the block boundary.
// A block that has never held an entry (virgin, all zero) is reported via
// the ok=false return so callers can special-case it.
func findLastEntry(block []byte) (off int, e rawEntry, ok bool) {
	if isVirginBlock(block) {
		return 0, rawEntry{}, false
	}
	off = 0
	for {
		e = readEntryAt(block, off)
		if off+int(e.RecLen) >= image.BlockSize {
			return off, e, true
		}
		off += int(e.RecLen)
	}
}

// insertIntoBlock attempts to place a new entry into block, either by
// claiming the whole block if it is virgin, or by locating a free hole in
// the final chain entry's slack (walking over any already-hidden entries
// embedded there). Returns false if there is no room.
func insertIntoBlock(block []byte, ent NewEntry) bool {
	aligned := alignedSize(len(ent.Name))

	anchorOff, anchor, ok := findLastEntry(block)
	if !ok {
		if aligned > image.BlockSize {
			return false
		}
		writeEntryAt(block, 0, ent.Inum, image.BlockSize, ent.FileType, ent.Name)
		return true
	}

	consumed := alignedSize(int(anchor.NameLen))
	slack := int(anchor.RecLen) - consumed
	holeOff := anchorOff + consumed

	for slack >= aligned {
		hidden := readEntryAt(block, holeOff)
		if hidden.Inum == 0 {
			writeEntryAt(block, holeOff, ent.Inum, uint16(slack), ent.FileType, ent.Name)
			setRecLen(block, anchorOff, uint16(consumed))
			return true
		}
		step := alignedSize(int(hidden.NameLen))
		holeOff += step
		consumed += step
		slack -= step
	}
	return false
}

// Insert adds a new entry to dirInum's directory data, reusing slack in an
// existing block if any has room, and otherwise allocating a new block.
func Insert(img *image.Image, dirInum uint32, ent NewEntry) error {
	dirIn := inode.Read(img, dirInum)
	if !dirIn.IsDir() {
		return ext2errors.ErrNoEntry
	}

	for _, bnum := range dirBlocks(img, dirIn) {
		if insertIntoBlock(img.Block(bnum), ent) {
			return nil
		}
	}

	slot := -1
	for i := 0; i < image.DirectBlockCount; i++ {
		if dirIn.IBlock[i] == 0 {
			slot = i
			break
		}
	}
	if slot == -1 {
		return ext2errors.ErrOutOfSpace
	}

	alloc := bitmap.New(img)
	bnum := alloc.AllocBlock()
	if bnum == 0 {
		return ext2errors.ErrOutOfSpace
	}

	dirIn.IBlock[slot] = bnum
	dirIn.Size += image.BlockSize
	dirIn.Blocks += 2
	inode.Write(img, dirInum, dirIn)

	if !insertIntoBlock(img.Block(bnum), ent) {
		return ext2errors.ErrOutOfSpace
	}
	return nil
}

// Delete hides the live entry named name within dirInum's directory data.
// If it is the first entry of its block, only its inode field is cleared;
// otherwise its span is folded into the previous live entry's rec_len.
func Delete(img *image.Image, dirInum uint32, name string) error {
	dirIn := inode.Read(img, dirInum)
	if !dirIn.IsDir() {
		return ext2errors.ErrNoEntry
	}

	for _, bnum := range dirBlocks(img, dirIn) {
		block := img.Block(bnum)
		off := 0
		prevOff := -1
		for off < image.BlockSize {
			e := readEntryAt(block, off)
			if e.Inum != 0 && nameMatches(e, name) {
				if prevOff == -1 {
					setInum(block, off, 0)
				} else {
					prev := readEntryAt(block, prevOff)
					setRecLen(block, prevOff, prev.RecLen+e.RecLen)
				}
				return nil
			}
			prevOff = off
			off += int(e.RecLen)
		}
	}
	return ext2errors.ErrNoEntry
}

// Restore recovers a hidden entry named name that is embedded in the slack
// of some live predecessor entry, and returns the inode number it pointed
// to. A live entry already named name takes precedence and is reported as
// ErrExists. A hidden entry that is itself a top-level chain link (the
// first-entry-of-block deletion case) is not recoverable through this
// path and is reported as ErrNoEntry.
func Restore(img *image.Image, dirInum uint32, name string) (uint32, error) {
	dirIn := inode.Read(img, dirInum)
	if !dirIn.IsDir() {
		return 0, ext2errors.ErrNoEntry
	}

	if _, err := Lookup(img, dirInum, name); err == nil {
		return 0, ext2errors.ErrExists
	}

	for _, bnum := range dirBlocks(img, dirIn) {
		block := img.Block(bnum)
		off := 0
		for off < image.BlockSize {
			anchor := readEntryAt(block, off)
			if anchor.Inum == 0 && nameMatches(anchor, name) {
				return 0, ext2errors.ErrNoEntry
			}

			anchorUsed := alignedSize(int(anchor.NameLen))
			slack := int(anchor.RecLen) - anchorUsed
			holeOff := off + anchorUsed

			for slack >= minEntrySize {
				hidden := readEntryAt(block, holeOff)
				if hidden.Inum == 0 {
					break
				}
				if nameMatches(hidden, name) {
					if hidden.FileType == image.FileTypeDir {
						return 0, ext2errors.ErrIsADirectory
					}
					return restoreCandidate(img, block, off, holeOff, slack, hidden)
				}
				step := alignedSize(int(hidden.NameLen))
				holeOff += step
				slack -= step
			}

			off += int(anchor.RecLen)
		}
	}
	return 0, ext2errors.ErrNoEntry
}

// restoreCandidate verifies the found hidden entry's inode and data blocks
// haven't been reused since deletion, and if so commits the recovery.
func restoreCandidate(img *image.Image, block []byte, anchorOff, hiddenOff int, slackAtFound int, hidden rawEntry) (uint32, error) {
	if bitmap.IsSet(img.InodeBitmap(), hidden.Inum) {
		return 0, ext2errors.ErrNotRecoverable
	}
	target := inode.Read(img, hidden.Inum)
	for _, ref := range inode.BlocksOf(img, target) {
		if bitmap.IsSet(img.BlockBitmap(), ref.Number) {
			return 0, ext2errors.ErrNotRecoverable
		}
	}

	setRecLen(block, hiddenOff, uint16(slackAtFound))
	setRecLen(block, anchorOff, uint16(int(readEntryAt(block, anchorOff).RecLen)-slackAtFound))

	alloc := bitmap.New(img)
	alloc.ReuseInode(hidden.Inum)
	for _, ref := range inode.BlocksOf(img, target) {
		alloc.ReuseBlock(ref.Number)
	}

	target.Dtime = 0
	target.LinksCount = 1
	inode.Write(img, hidden.Inum, target)

	return hidden.Inum, nil
}
