// Package path implements path resolution: an absolute, token-by-token
// walk from the root inode to the inode named by each component in turn.
package path

import (
	"strings"

	ext2errors "github.com/nmeum/ext2img/errors"
	"github.com/nmeum/ext2img/dirent"
	"github.com/nmeum/ext2img/image"
	"github.com/nmeum/ext2img/inode"
)

// Resolve walks an absolute path from the root inode, returning the inode
// number of the final component. A relative path, a missing component, or
// a non-directory component in the middle of the path all yield
// ErrNoEntry; these cases are not distinguished. A trailing slash is only
// valid if the final component is itself a directory.
func Resolve(img *image.Image, p string) (uint32, error) {
	if !strings.HasPrefix(p, "/") {
		return 0, ext2errors.ErrNoEntry
	}

	curInum := uint32(image.RootInode)
	trailingSlash := strings.HasSuffix(p, "/")

	for _, tok := range tokenize(p) {
		next, err := dirent.Lookup(img, curInum, tok)
		if err != nil {
			return 0, ext2errors.ErrNoEntry
		}
		curInum = next
	}

	if trailingSlash && !inode.Read(img, curInum).IsDir() {
		return 0, ext2errors.ErrNoEntry
	}
	return curInum, nil
}

// tokenize splits an absolute path into its non-empty components, as
// strtok(path, "/") does.
func tokenize(p string) []string {
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Basename returns the last path component, truncated to the maximum
// on-disk name length (255 bytes) to fit the fixed-size name field.
func Basename(p string) string {
	toks := tokenize(p)
	if len(toks) == 0 {
		return ""
	}
	name := toks[len(toks)-1]
	if len(name) > image.NameMax {
		name = name[:image.NameMax]
	}
	return name
}

// ParentPath returns the path to the parent directory of the last
// component in p, always ending in "/". For "/path/to/target" (or
// "/path/to/target/") it returns "/path/to/". The root path "/" has no
// parent and is returned unchanged.
func ParentPath(p string) string {
	if p == "/" {
		return "/"
	}
	trimmed := strings.TrimSuffix(p, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx <= 0 {
		return "/"
	}
	return trimmed[:idx+1]
}
