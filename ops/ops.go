// Package ops implements the toolkit's verbs: copy-in, link, mkdir, rm,
// and restore, each a thin driver composing image/bitmap/inode/dirent/path.
package ops

import "time"

// deletionTime returns the current time as an ext2 i_dtime value.
func deletionTime() uint32 {
	return uint32(time.Now().Unix())
}
