package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/blocklessnetwork/car-utils/unpacker"
)

var lsCommand = &cli.Command{
	Name:      "ls",
	Usage:     "print the top-level entries of the first root",
	ArgsUsage: "<car>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "human",
			Usage: "print sizes in human-readable units instead of bytes",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print entries as a JSON array instead of tab-separated lines",
		},
	},
	Action: func(c *cli.Context) error {
		if c.Args().Len() != 1 {
			return fmt.Errorf("usage: car-utils ls <car>")
		}
		r, f, err := openCar(c.Args().First())
		if err != nil {
			return err
		}
		defer f.Close()

		res, err := unpacker.New(r)
		if err != nil {
			return err
		}

		roots := r.Roots()
		entries, err := res.Ls(roots[0])
		if err != nil {
			return err
		}

		if c.Bool("json") {
			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		for _, e := range entries {
			name := e.Name
			if name == "" {
				name = "."
			}
			size := fmt.Sprintf("%d", e.Size)
			if c.Bool("human") {
				size = humanize.Bytes(e.Size)
			}
			fmt.Fprintln(c.App.Writer, strings.Join([]string{name, strings.ToLower(e.Type.String()), size}, "\t"))
		}
		return nil
	},
}
