package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/urfave/cli/v2"
)

var keygen = cli.Command{
	Name:  "keygen",
	Usage: "generate a new keypair and use it to sign requests",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "outfile",
			Usage: "where to write the keypair",
			Value: defaultKeypairPath(),
		},
		&cli.BoolFlag{
			Name:  "force",
			Usage: "overwrite the keypair file if it exists",
		},
	},
	Action: keygenAction,
}

func defaultKeypairPath() string {
	return filepath.Join(custodyDataDir, "id.json")
}

func keygenAction(ctx *cli.Context) error {
	outfile := ctx.String("outfile")
	if _, err := os.Stat(outfile); err == nil && !ctx.Bool("force") {
		return fmt.Errorf("%s already exists, use --force to overwrite it", outfile)
	}

	key := solana.NewWallet().PrivateKey
	if err := writeKeypair(outfile, key); err != nil {
		return err
	}
	if err := setState(map[string]string{"keypair": outfile}); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("pubkey:", key.PublicKey())
	fmt.Println("keypair written to", outfile)
	return nil
}

// writeKeypair stores key in the same format of solana-keygen, a JSON array
// of the 64 key bytes.
func writeKeypair(path string, key solana.PrivateKey) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	ints := make([]int, 0, len(key))
	for _, b := range key {
		ints = append(ints, int(b))
	}
	data, err := json.Marshal(ints)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
