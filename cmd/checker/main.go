package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nmeum/ext2img/check"
	"github.com/nmeum/ext2img/internal/imgio"
)

func main() {
	app := &cli.App{
		Name:      "checker",
		Usage:     "check and repair an ext2 image's consistency",
		ArgsUsage: "IMG",
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		imgio.Exit(err)
	}
}

func run(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return cli.Exit("usage: checker IMG", -1)
	}
	imgPath := ctx.Args().Get(0)

	img, err := imgio.Load(imgPath)
	if err != nil {
		imgio.Exit(err)
	}

	result := check.Run(img)
	if result.Fixes != nil {
		for _, e := range result.Fixes.Errors {
			fmt.Println(e.Error())
		}
	}
	fmt.Println(result.Summary())

	if err := imgio.Save(imgPath, img); err != nil {
		imgio.Exit(err)
	}
	return nil
}
