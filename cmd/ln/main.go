package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nmeum/ext2img/internal/imgio"
	"github.com/nmeum/ext2img/ops"
)

func main() {
	app := &cli.App{
		Name:      "ln",
		Usage:     "link a file within an ext2 image",
		ArgsUsage: "IMG SRC DST",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "s", Usage: "create a symbolic link instead of a hard link"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		imgio.Exit(err)
	}
}

func run(ctx *cli.Context) error {
	// A trailing -s is left among the positional arguments by the flag
	// parser, so it is recognised here as well as in front of IMG.
	symbolic := ctx.Bool("s")
	if ctx.Args().Len() == 4 && ctx.Args().Get(3) == "-s" {
		symbolic = true
	} else if ctx.Args().Len() != 3 {
		return cli.Exit("usage: ln IMG SRC DST [-s]", -1)
	}
	imgPath := ctx.Args().Get(0)
	srcPath := ctx.Args().Get(1)
	destPath := ctx.Args().Get(2)

	img, err := imgio.Load(imgPath)
	if err != nil {
		imgio.Exit(err)
	}

	if err := ops.Link(img, srcPath, destPath, symbolic); err != nil {
		imgio.Exit(err)
	}

	if err := imgio.Save(imgPath, img); err != nil {
		imgio.Exit(err)
	}
	return nil
}
