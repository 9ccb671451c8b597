package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var balance = cli.Command{
	Name:  "balance",
	Usage: "show the SOL or token balance of an address",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "address",
			Usage: "the address, defaults to the configured keypair",
		},
		&cli.StringFlag{
			Name:  "mint",
			Usage: "the token mint, if not set the SOL balance is shown",
		},
	},
	Action: balanceAction,
}

func balanceAction(ctx *cli.Context) error {
	client, err := getDaemonClient(ctx)
	if err != nil {
		return err
	}
	address := ctx.String("address")
	if address == "" {
		address = client.key.PublicKey().String()
	}

	if mint := ctx.String("mint"); mint != "" {
		var resp struct {
			Amount uint64 `json:"amount"`
		}
		if err := client.get(
			fmt.Sprintf("/v1/accounts/%s/tokens/%s", address, mint), &resp,
		); err != nil {
			return err
		}
		fmt.Println(resp.Amount)
		return nil
	}

	var resp struct {
		Lamports uint64 `json:"lamports"`
	}
	if err := client.get("/v1/accounts/"+address, &resp); err != nil {
		return err
	}
	fmt.Println(formatSol(resp.Lamports), "SOL")
	return nil
}
