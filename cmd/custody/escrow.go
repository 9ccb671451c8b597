package main

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/urfave/cli/v2"
)

var (
	seedFlag = cli.Uint64Flag{
		Name:     "seed",
		Usage:    "the seed distinguishing the escrows of a maker",
		Required: true,
	}
	makerFlag = cli.StringFlag{
		Name:  "maker",
		Usage: "the maker of the escrow, defaults to the configured keypair",
	}

	escrow = cli.Command{
		Name:  "escrow",
		Usage: "make, take or refund escrows",
		Subcommands: []*cli.Command{
			escrowMakeCmd, escrowTakeCmd, escrowRefundCmd,
			escrowInfoCmd, escrowListCmd, escrowReceiptsCmd,
		},
	}

	escrowMakeCmd = &cli.Command{
		Name:  "make",
		Usage: "offer amount_a of token_a in exchange of amount_b of token_b",
		Flags: []cli.Flag{
			&seedFlag,
			&cli.StringFlag{
				Name:     "token_a",
				Usage:    "the mint of the offered token",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "token_b",
				Usage:    "the mint of the requested token",
				Required: true,
			},
			&cli.Uint64Flag{
				Name:     "amount_a",
				Usage:    "the offered amount, in base units",
				Required: true,
			},
			&cli.Uint64Flag{
				Name:     "amount_b",
				Usage:    "the requested amount, in base units",
				Required: true,
			},
		},
		Action: escrowMakeAction,
	}
	escrowTakeCmd = &cli.Command{
		Name:  "take",
		Usage: "accept an escrow, paying amount_b of token_b to its maker",
		Flags: []cli.Flag{
			&seedFlag,
			&cli.StringFlag{
				Name:     "maker",
				Usage:    "the maker of the escrow",
				Required: true,
			},
		},
		Action: escrowTakeAction,
	}
	escrowRefundCmd = &cli.Command{
		Name:   "refund",
		Usage:  "close an escrow of the configured keypair and get back the offered tokens",
		Flags:  []cli.Flag{&seedFlag},
		Action: escrowRefundAction,
	}
	escrowInfoCmd = &cli.Command{
		Name:   "info",
		Usage:  "show an escrow",
		Flags:  []cli.Flag{&seedFlag, &makerFlag},
		Action: escrowInfoAction,
	}
	escrowListCmd = &cli.Command{
		Name:  "list",
		Usage: "list all open escrows, optionally filtered by maker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "maker",
				Usage: "the maker of the escrows",
			},
		},
		Action: escrowListAction,
	}
	escrowReceiptsCmd = &cli.Command{
		Name:  "receipts",
		Usage: "list the receipts of closed escrows, optionally filtered by maker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "maker",
				Usage: "the maker of the escrows",
			},
		},
		Action: escrowReceiptsAction,
	}
)

func escrowMakeAction(ctx *cli.Context) error {
	client, err := getDaemonClient(ctx)
	if err != nil {
		return err
	}

	var resp json.RawMessage
	if err := client.post("/v1/escrow/make", map[string]interface{}{
		"seed":     ctx.Uint64("seed"),
		"token_a":  ctx.String("token_a"),
		"token_b":  ctx.String("token_b"),
		"amount_a": ctx.Uint64("amount_a"),
		"amount_b": ctx.Uint64("amount_b"),
	}, &resp); err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func escrowTakeAction(ctx *cli.Context) error {
	client, err := getDaemonClient(ctx)
	if err != nil {
		return err
	}

	var resp json.RawMessage
	if err := client.post("/v1/escrow/take", map[string]interface{}{
		"maker": ctx.String("maker"),
		"seed":  ctx.Uint64("seed"),
	}, &resp); err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func escrowRefundAction(ctx *cli.Context) error {
	client, err := getDaemonClient(ctx)
	if err != nil {
		return err
	}

	var resp json.RawMessage
	if err := client.post("/v1/escrow/refund", map[string]interface{}{
		"maker": client.key.PublicKey().String(),
		"seed":  ctx.Uint64("seed"),
	}, &resp); err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func escrowInfoAction(ctx *cli.Context) error {
	client, err := getDaemonClient(ctx)
	if err != nil {
		return err
	}
	maker := ctx.String("maker")
	if maker == "" {
		maker = client.key.PublicKey().String()
	}

	var resp json.RawMessage
	if err := client.get(
		fmt.Sprintf("/v1/escrow/%s/%d", maker, ctx.Uint64("seed")), &resp,
	); err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func escrowListAction(ctx *cli.Context) error {
	return listWithMaker(ctx, "/v1/escrows")
}

func escrowReceiptsAction(ctx *cli.Context) error {
	return listWithMaker(ctx, "/v1/receipts")
}

func listWithMaker(ctx *cli.Context, path string) error {
	client, err := getDaemonClient(ctx)
	if err != nil {
		return err
	}
	if maker := ctx.String("maker"); maker != "" {
		path += "?" + url.Values{"maker": {maker}}.Encode()
	}

	var resp json.RawMessage
	if err := client.get(path, &resp); err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}
