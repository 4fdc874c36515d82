// Package imgio is the small host-side glue shared by every CLI binary:
// loading an image file into memory, writing it back, and translating an
// Ext2Error/DriverError into a process exit code.
package imgio

import (
	"fmt"
	"os"

	ext2errors "github.com/nmeum/ext2img/errors"
	"github.com/nmeum/ext2img/image"
)

// Load reads path into memory and wraps it as an Image. The file must be
// exactly image.TotalSize bytes, the toolkit's only supported geometry.
func Load(path string) (*image.Image, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, ext2errors.ErrIO.WrapError(err)
	}
	if len(buf) != image.TotalSize {
		return nil, ext2errors.ErrIO.WithMessage(
			fmt.Sprintf("%s: not a %d byte ext2 image", path, image.TotalSize))
	}
	return image.New(buf), nil
}

// Save writes img's backing bytes back to path.
func Save(path string, img *image.Image) error {
	if err := os.WriteFile(path, img.Bytes(), 0o644); err != nil {
		return ext2errors.ErrIO.WrapError(err)
	}
	return nil
}

// Exit prints err to stderr and terminates the process with the exit code
// its taxonomy entry defines. A nil err is a no-op.
func Exit(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	if de, ok := err.(interface{ ExitCode() int }); ok {
		os.Exit(de.ExitCode())
	}
	os.Exit(-1)
}
