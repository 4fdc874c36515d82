package image

import "encoding/binary"

// Superblock is a typed view over the on-disk superblock record, following
// the real ext2 field layout for the fields this core reads and writes:
//
//	offset 0:  s_inodes_count       uint32
//	offset 4:  s_blocks_count       uint32
//	offset 8:  s_r_blocks_count     uint32 (unused by this core)
//	offset 12: s_free_blocks_count  uint32
//	offset 16: s_free_inodes_count  uint32
type Superblock struct {
	raw []byte
}

func (sb Superblock) InodesCount() uint32 {
	return binary.LittleEndian.Uint32(sb.raw[0:4])
}

func (sb Superblock) SetInodesCount(v uint32) {
	binary.LittleEndian.PutUint32(sb.raw[0:4], v)
}

func (sb Superblock) BlocksCount() uint32 {
	return binary.LittleEndian.Uint32(sb.raw[4:8])
}

func (sb Superblock) SetBlocksCount(v uint32) {
	binary.LittleEndian.PutUint32(sb.raw[4:8], v)
}

func (sb Superblock) FreeBlocksCount() uint32 {
	return binary.LittleEndian.Uint32(sb.raw[12:16])
}

func (sb Superblock) SetFreeBlocksCount(v uint32) {
	binary.LittleEndian.PutUint32(sb.raw[12:16], v)
}

func (sb Superblock) FreeInodesCount() uint32 {
	return binary.LittleEndian.Uint32(sb.raw[16:20])
}

func (sb Superblock) SetFreeInodesCount(v uint32) {
	binary.LittleEndian.PutUint32(sb.raw[16:20], v)
}
