package main

import (
	"fmt"

	"github.com/multiformats/go-multibase"
	"github.com/urfave/cli/v2"
)

var rootsCommand = &cli.Command{
	Name:      "roots",
	Usage:     "print root CIDs, one per line",
	ArgsUsage: "<car>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "base",
			Usage: "re-encode v1 CIDs in this multibase (e.g. base32, base58btc); default renders each CID's own base",
		},
	},
	Action: func(c *cli.Context) error {
		if c.Args().Len() != 1 {
			return fmt.Errorf("usage: car-utils roots <car>")
		}
		r, f, err := openCar(c.Args().First())
		if err != nil {
			return err
		}
		defer f.Close()

		var enc multibase.Encoder
		hasEnc := false
		if name := c.String("base"); name != "" {
			e, err := multibase.EncoderByName(name)
			if err != nil {
				return fmt.Errorf("unknown multibase %q: %w", name, err)
			}
			enc = e
			hasEnc = true
		}

		for _, root := range r.Roots() {
			if hasEnc {
				fmt.Fprintln(c.App.Writer, root.Encode(enc))
			} else {
				fmt.Fprintln(c.App.Writer, root.String())
			}
		}
		return nil
	},
}
