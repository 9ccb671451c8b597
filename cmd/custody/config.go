package main

import (
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"
)

var (
	daemonURLFlag = cli.StringFlag{
		Name:  "daemon_url",
		Usage: "custodyd HTTP interface url",
		Value: "http://localhost:9945",
	}

	keypairFlag = cli.StringFlag{
		Name:  "keypair",
		Usage: "path of the keypair file used to sign requests",
		Value: defaultKeypairPath(),
	}
)

var config = cli.Command{
	Name:   "config",
	Usage:  "Print local configuration of the custody CLI",
	Action: configAction,
	Subcommands: []*cli.Command{
		{
			Name:      "set",
			Usage:     "set a <key> <value> in the local state",
			ArgsUsage: "<key> <value>",
			Action:    configSetAction,
		},
		{
			Name:   "init",
			Usage:  "initialize the local state with flags",
			Action: configInitAction,
			Flags: []cli.Flag{
				&daemonURLFlag,
				&keypairFlag,
			},
		},
	},
}

func configAction(ctx *cli.Context) error {
	state, err := getState()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(state))
	for key := range state {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Println(key + ": " + state[key])
	}

	return nil
}

func configInitAction(ctx *cli.Context) error {
	return setState(map[string]string{
		"daemon_url": ctx.String("daemon_url"),
		"keypair":    ctx.String("keypair"),
	})
}

func configSetAction(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	key, value := ctx.Args().Get(0), ctx.Args().Get(1)
	if err := setState(map[string]string{key: value}); err != nil {
		return err
	}

	fmt.Printf("%s %s has been set\n", key, value)
	return nil
}
