package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nmeum/ext2img/internal/imgio"
	"github.com/nmeum/ext2img/ops"
)

func main() {
	app := &cli.App{
		Name:      "restore",
		Usage:     "recover a previously removed entry in an ext2 image",
		ArgsUsage: "IMG PATH",
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		imgio.Exit(err)
	}
}

func run(ctx *cli.Context) error {
	if ctx.Args().Len() != 2 {
		return cli.Exit("usage: restore IMG PATH", -1)
	}
	imgPath := ctx.Args().Get(0)
	targetPath := ctx.Args().Get(1)

	img, err := imgio.Load(imgPath)
	if err != nil {
		imgio.Exit(err)
	}

	if _, err := ops.Restore(img, targetPath); err != nil {
		imgio.Exit(err)
	}

	if err := imgio.Save(imgPath, img); err != nil {
		imgio.Exit(err)
	}
	return nil
}
