package dirent

import (
	"encoding/binary"

	"github.com/nmeum/ext2img/image"
)

// rawEntry is the decoded form of one directory entry header plus name.
type rawEntry struct {
	Inum     uint32
	RecLen   uint16
	NameLen  uint8
	FileType uint8
	Name     string
}

// alignedSize returns the 4-byte-aligned footprint of an entry with the
// given name length: round4(8 + name_len).
func alignedSize(nameLen int) int {
	n := image.DirentHeaderSize + nameLen
	return (n + 3) &^ 3
}

// readEntryAt decodes the entry header and name starting at byte offset off
// in block.
func readEntryAt(block []byte, off int) rawEntry {
	inum := binary.LittleEndian.Uint32(block[off : off+4])
	recLen := binary.LittleEndian.Uint16(block[off+4 : off+6])
	nameLen := block[off+6]
	fileType := block[off+7]
	name := string(block[off+8 : off+8+int(nameLen)])
	return rawEntry{
		Inum:     inum,
		RecLen:   recLen,
		NameLen:  nameLen,
		FileType: fileType,
		Name:     name,
	}
}

// writeEntryAt writes an entry header and name at byte offset off in block.
// Bytes beyond the name, up to recLen, are left untouched: they may hold a
// hidden entry chain left behind by a prior deletion.
func writeEntryAt(block []byte, off int, inum uint32, recLen uint16, fileType uint8, name string) {
	binary.LittleEndian.PutUint32(block[off:off+4], inum)
	binary.LittleEndian.PutUint16(block[off+4:off+6], recLen)
	block[off+6] = byte(len(name))
	block[off+7] = fileType
	copy(block[off+8:off+8+len(name)], name)
}

// setInum overwrites just the inode field of the entry at off, leaving
// rec_len, name_len, file_type, and name bytes untouched. Used by Delete
// when hiding the first entry of a block.
func setInum(block []byte, off int, inum uint32) {
	binary.LittleEndian.PutUint32(block[off:off+4], inum)
}

// setRecLen overwrites just the rec_len field of the entry at off.
func setRecLen(block []byte, off int, recLen uint16) {
	binary.LittleEndian.PutUint16(block[off+4:off+6], recLen)
}

// isVirginBlock reports whether block has never held a directory entry:
// the first entry's inode and rec_len are both still zero.
func isVirginBlock(block []byte) bool {
	return binary.LittleEndian.Uint32(block[0:4]) == 0 &&
		binary.LittleEndian.Uint16(block[4:6]) == 0
}

func nameMatches(e rawEntry, name string) bool {
	return int(e.NameLen) == len(name) && e.Name == name
}
