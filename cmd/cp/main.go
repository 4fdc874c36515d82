package main

import (
	"os"
	hostpath "path/filepath"

	"github.com/urfave/cli/v2"

	ext2errors "github.com/nmeum/ext2img/errors"
	"github.com/nmeum/ext2img/internal/imgio"
	"github.com/nmeum/ext2img/ops"
)

func main() {
	app := &cli.App{
		Name:      "cp",
		Usage:     "copy a host file into an ext2 image",
		ArgsUsage: "IMG HOST_SRC IMG_DST",
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		imgio.Exit(err)
	}
}

func run(ctx *cli.Context) error {
	if ctx.Args().Len() != 3 {
		return cli.Exit("usage: cp IMG HOST_SRC IMG_DST", -1)
	}
	imgPath := ctx.Args().Get(0)
	hostSrc := ctx.Args().Get(1)
	imgDst := ctx.Args().Get(2)

	img, err := imgio.Load(imgPath)
	if err != nil {
		imgio.Exit(err)
	}

	content, err := os.ReadFile(hostSrc)
	if err != nil {
		imgio.Exit(ext2errors.ErrIO.WrapError(err))
	}

	if err := ops.CopyIn(img, content, imgDst, hostpath.Base(hostSrc)); err != nil {
		imgio.Exit(err)
	}

	if err := imgio.Save(imgPath, img); err != nil {
		imgio.Exit(err)
	}
	return nil
}
