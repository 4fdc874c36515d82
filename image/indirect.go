package image

import "encoding/binary"

// IndirectBlock is a typed 256-wide view of a single-indirect data block:
// 256 little-endian 32-bit block numbers, 0-terminated.
type IndirectBlock struct {
	raw []byte
}

// Get returns the i-th block number (0-indexed) stored in the indirect block.
func (ib IndirectBlock) Get(i int) uint32 {
	return binary.LittleEndian.Uint32(ib.raw[i*4 : i*4+4])
}

// Set stores the i-th block number (0-indexed) in the indirect block.
func (ib IndirectBlock) Set(i int, v uint32) {
	binary.LittleEndian.PutUint32(ib.raw[i*4:i*4+4], v)
}
