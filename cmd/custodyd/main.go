package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tdex-network/custody-daemon/internal/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	app = &cobra.Command{
		Use:           "custodyd",
		Short:         "custody daemon",
		Long:          "custodyd keeps vaults and escrows at program-derived addresses and serves them over HTTP",
		Version:       formatVersion(),
		RunE:          action,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	flags := app.Flags()
	flags.String("datadir", "", "the directory where the daemon stores its state")
	flags.Int("log-level", 4, "the logrus log level, from 0 (panic) to 6 (trace)")
	flags.Int("port", 9945, "the port of the HTTP interface")
	flags.String("db-type", config.DBBadger, "the db backend, badger or inmemory")
}

func main() {
	if err := app.Execute(); err != nil {
		log.Fatal(err)
	}
}

func action(cmd *cobra.Command, _ []string) error {
	if err := config.BindFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := config.InitConfig(); err != nil {
		return err
	}

	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	d, err := newDaemon()
	if err != nil {
		return err
	}

	log.Info("starting daemon")
	if err := d.start(); err != nil {
		d.stop()
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down daemon")
	d.stop()
	log.Info("exiting")
	return nil
}

func formatVersion() string {
	return fmt.Sprintf(
		"Version: %s\nCommit: %s\nDate: %s",
		version, commit, date,
	)
}
