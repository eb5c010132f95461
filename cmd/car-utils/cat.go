package main

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/urfave/cli/v2"

	"github.com/blocklessnetwork/car-utils/unpacker"
)

var catCommand = &cli.Command{
	Name:      "cat",
	Usage:     "write the bytes of a File/Raw CID to stdout",
	ArgsUsage: "<car>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "cid",
			Aliases:  []string{"c"},
			Usage:    "CID of the block to print",
			Required: true,
		},
	},
	Action: func(c *cli.Context) error {
		if c.Args().Len() != 1 {
			return fmt.Errorf("usage: car-utils cat <car> -c <cid>")
		}
		target, err := cid.Parse(c.String("cid"))
		if err != nil {
			return err
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
		return res.Cat(target, c.App.Writer)
	},
}
