package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/blocklessnetwork/car-utils/unpacker"
)

var unpackCommand = &cli.Command{
	Name:      "unpack",
	Usage:     "restore the tree from the first root",
	ArgsUsage: "<car>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "directory to restore into",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   "file name to use when the root is a bare file or symlink (defaults to the CAR's base name)",
		},
	},
	Action: func(c *cli.Context) error {
		if c.Args().Len() != 1 {
			return fmt.Errorf("usage: car-utils unpack <car> -o <output-dir>")
		}
		carPath := c.Args().First()
		r, f, err := openCar(carPath)
		if err != nil {
			return err
		}
		defer f.Close()

		res, err := unpacker.New(r)
		if err != nil {
			return err
		}

		target := c.String("output")
		if err := os.MkdirAll(target, 0o755); err != nil {
			return err
		}

		rootName := c.String("name")
		if rootName == "" {
			base := filepath.Base(carPath)
			rootName = strings.TrimSuffix(base, filepath.Ext(base))
		}

		roots := r.Roots()
		return res.Unpack(roots[0], target, rootName)
	},
}
