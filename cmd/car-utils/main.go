// Command car-utils packs a file-system tree into a CAR v1 archive
// and inspects or unpacks one.
package main

import (
	"fmt"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
)

var logger = logging.Logger("car-utils")

func main() {
	app := &cli.App{
		Name:  "car-utils",
		Usage: "pack, unpack, and inspect Content Addressable aRchive files",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				logging.SetAllLoggers(logging.LevelDebug)
			}
			logger.Debugf("running %s", c.Args().Slice())
			return nil
		},
		Commands: []*cli.Command{
			packCommand,
			unpackCommand,
			lsCommand,
			rootsCommand,
			catCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
