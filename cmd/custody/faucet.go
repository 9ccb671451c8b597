package main

import (
	"encoding/json"

	"github.com/urfave/cli/v2"
)

var (
	faucet = cli.Command{
		Name:  "faucet",
		Usage: "fund wallets, only if enabled by the daemon",
		Subcommands: []*cli.Command{
			faucetAirdropCmd, faucetMintCmd,
		},
	}

	faucetAirdropCmd = &cli.Command{
		Name:  "airdrop",
		Usage: "credit SOL to an address",
		Flags: []cli.Flag{
			&amountFlag,
			&cli.StringFlag{
				Name:  "address",
				Usage: "the address to fund, defaults to the configured keypair",
			},
		},
		Action: faucetAirdropAction,
	}
	faucetMintCmd = &cli.Command{
		Name:  "mint",
		Usage: "credit tokens to the associated token account of an owner",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "mint",
				Usage:    "the token mint",
				Required: true,
			},
			&cli.Uint64Flag{
				Name:     "amount",
				Usage:    "the amount in base units",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "owner",
				Usage: "the owner of the token account, defaults to the configured keypair",
			},
		},
		Action: faucetMintAction,
	}
)

func faucetAirdropAction(ctx *cli.Context) error {
	client, err := getDaemonClient(ctx)
	if err != nil {
		return err
	}
	lamports, err := parseSol(ctx.String("amount"))
	if err != nil {
		return err
	}

	body := map[string]interface{}{"lamports": lamports}
	if address := ctx.String("address"); address != "" {
		body["address"] = address
	}

	var resp json.RawMessage
	if err := client.post("/v1/faucet/airdrop", body, &resp); err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func faucetMintAction(ctx *cli.Context) error {
	client, err := getDaemonClient(ctx)
	if err != nil {
		return err
	}

	body := map[string]interface{}{
		"mint":   ctx.String("mint"),
		"amount": ctx.Uint64("amount"),
	}
	if owner := ctx.String("owner"); owner != "" {
		body["owner"] = owner
	}

	var resp json.RawMessage
	if err := client.post("/v1/faucet/mint", body, &resp); err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}
