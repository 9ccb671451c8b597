package main

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"
)

var (
	amountFlag = cli.StringFlag{
		Name:     "amount",
		Usage:    "the amount in SOL",
		Required: true,
	}

	vault = cli.Command{
		Name:  "vault",
		Usage: "manage the vault of the configured keypair",
		Subcommands: []*cli.Command{
			vaultInitCmd, vaultDepositCmd, vaultWithdrawCmd, vaultInfoCmd,
		},
	}

	vaultInitCmd = &cli.Command{
		Name:   "init",
		Usage:  "create the vault, paying its reserve and the one of its state",
		Action: vaultInitAction,
	}
	vaultDepositCmd = &cli.Command{
		Name:   "deposit",
		Usage:  "move SOL from the wallet to the vault",
		Flags:  []cli.Flag{&amountFlag},
		Action: vaultDepositAction,
	}
	vaultWithdrawCmd = &cli.Command{
		Name:  "withdraw",
		Usage: "move SOL from the vault back to the wallet",
		Flags: []cli.Flag{
			&amountFlag,
			&cli.StringFlag{
				Name:  "owner",
				Usage: "the owner of the vault, defaults to the configured keypair",
			},
		},
		Action: vaultWithdrawAction,
	}
	vaultInfoCmd = &cli.Command{
		Name:  "info",
		Usage: "show a vault",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "owner",
				Usage: "the owner of the vault, defaults to the configured keypair",
			},
		},
		Action: vaultInfoAction,
	}
)

type vaultInfo struct {
	Balance       uint64 `json:"balance"`
	TotalDeposits uint64 `json:"total_deposits"`
	Withdrawable  uint64 `json:"withdrawable"`
}

func vaultInitAction(ctx *cli.Context) error {
	client, err := getDaemonClient(ctx)
	if err != nil {
		return err
	}

	var resp json.RawMessage
	if err := client.post("/v1/vault/initialize", nil, &resp); err != nil {
		return err
	}
	return printVault(resp)
}

func vaultDepositAction(ctx *cli.Context) error {
	client, err := getDaemonClient(ctx)
	if err != nil {
		return err
	}
	amount, err := parseSol(ctx.String("amount"))
	if err != nil {
		return err
	}

	var resp json.RawMessage
	if err := client.post(
		"/v1/vault/deposit", map[string]interface{}{"amount": amount}, &resp,
	); err != nil {
		return err
	}
	return printVault(resp)
}

func vaultWithdrawAction(ctx *cli.Context) error {
	client, err := getDaemonClient(ctx)
	if err != nil {
		return err
	}
	amount, err := parseSol(ctx.String("amount"))
	if err != nil {
		return err
	}

	body := map[string]interface{}{"amount": amount}
	if owner := ctx.String("owner"); owner != "" {
		body["owner"] = owner
	}

	var resp json.RawMessage
	if err := client.post("/v1/vault/withdraw", body, &resp); err != nil {
		return err
	}
	return printVault(resp)
}

func vaultInfoAction(ctx *cli.Context) error {
	client, err := getDaemonClient(ctx)
	if err != nil {
		return err
	}
	owner := ctx.String("owner")
	if owner == "" {
		owner = client.key.PublicKey().String()
	}

	var resp json.RawMessage
	if err := client.get("/v1/vault/"+owner, &resp); err != nil {
		return err
	}
	return printVault(resp)
}

func printVault(resp json.RawMessage) error {
	var info vaultInfo
	if err := json.Unmarshal(resp, &info); err != nil {
		return err
	}

	printRespJSON(resp)
	fmt.Println()
	fmt.Println("balance:", formatSol(info.Balance), "SOL")
	fmt.Println("withdrawable:", formatSol(info.Withdrawable), "SOL")
	fmt.Println("total deposits:", formatSol(info.TotalDeposits), "SOL")
	return nil
}
