package main

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/thanhpk/randstr"
	"github.com/urfave/cli/v2"
)

var (
	eventFlag = cli.StringFlag{
		Name: "event",
		Usage: "VAULT_INITIALIZED, VAULT_DEPOSIT, VAULT_WITHDRAW, ESCROW_MADE, " +
			"ESCROW_TAKEN, ESCROW_REFUNDED or * for any event",
	}

	webhook = cli.Command{
		Name:  "webhook",
		Usage: "add, remove or list webhooks, operator only",
		Subcommands: []*cli.Command{
			webhookAddCmd, webhookRemoveCmd, webhookListCmd,
		},
	}

	webhookAddCmd = &cli.Command{
		Name:  "add",
		Usage: "add a (secured) webhook endpoint called whenever a target event occurs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "endpoint",
				Usage:    "the webhook endpoint to be called whenever the target event occurs",
				Required: true,
			},
			&cli.StringFlag{
				Name: "secret",
				Usage: "the eventual secret to use to generate a bearer token for " +
					"authenticating requests to the webhook endpoint",
			},
			&cli.BoolFlag{
				Name:  "gen_secret",
				Usage: "generate a random secret",
			},
			&eventFlag,
		},
		Action: webhookAddAction,
	}
	webhookRemoveCmd = &cli.Command{
		Name:  "remove",
		Usage: "remove a webhook",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "id",
				Usage:    "the id of the webhook to remove",
				Required: true,
			},
		},
		Action: webhookRemoveAction,
	}
	webhookListCmd = &cli.Command{
		Name:   "list",
		Usage:  "list all webhooks, optionally filtered by target event",
		Flags:  []cli.Flag{&eventFlag},
		Action: webhookListAction,
	}
)

func webhookAddAction(ctx *cli.Context) error {
	client, err := getDaemonClient(ctx)
	if err != nil {
		return err
	}

	event := ctx.String("event")
	if event == "" {
		return fmt.Errorf("missing event")
	}
	secret := ctx.String("secret")
	if secret != "" && ctx.Bool("gen_secret") {
		return fmt.Errorf("secret and gen_secret are mutually exclusive")
	}
	if ctx.Bool("gen_secret") {
		secret = randstr.Hex(32)
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := client.post("/v1/webhooks", map[string]string{
		"event":    event,
		"endpoint": ctx.String("endpoint"),
		"secret":   secret,
	}, &resp); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("webhook id:", resp.ID)
	if ctx.Bool("gen_secret") {
		fmt.Println("secret:", secret)
	}
	return nil
}

func webhookRemoveAction(ctx *cli.Context) error {
	client, err := getDaemonClient(ctx)
	if err != nil {
		return err
	}

	hookID := ctx.String("id")
	if err := client.delete("/v1/webhooks/" + url.PathEscape(hookID)); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("removed webhook with id:", hookID)
	return nil
}

func webhookListAction(ctx *cli.Context) error {
	client, err := getDaemonClient(ctx)
	if err != nil {
		return err
	}

	path := "/v1/webhooks"
	if event := ctx.String("event"); event != "" {
		path += "?" + url.Values{"event": {event}}.Encode()
	}

	var resp json.RawMessage
	if err := client.get(path, &resp); err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}
