package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/blocklessnetwork/car-utils/packer"
)

var packCommand = &cli.Command{
	Name:      "pack",
	Usage:     "pack a file or directory into a new CAR",
	ArgsUsage: "<source>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "output",
			Aliases:  []string{"o"},
			Usage:    "path to write the CAR to",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "no-wrap",
			Usage: "when source is a single file, do not wrap it in a synthetic directory",
		},
		&cli.Int64Flag{
			Name:  "chunk-size",
			Usage: "fixed chunk window size in bytes",
			Value: packer.DefaultChunkSize,
		},
	},
	Action: func(c *cli.Context) error {
		if c.Args().Len() != 1 {
			return fmt.Errorf("usage: car-utils pack <source> -o <output>")
		}
		source := c.Args().First()

		out, err := os.Create(c.String("output"))
		if err != nil {
			return err
		}
		defer out.Close()

		p := packer.New(
			packer.WithNoWrap(c.Bool("no-wrap")),
			packer.WithChunkSize(c.Int64("chunk-size")),
		)
		return p.Pack(source, out)
	},
}
