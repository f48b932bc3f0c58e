package main

import (
	"fmt"
	"os"

	app_config "github.com/apostrophe-corp/daohub/config"
	"github.com/apostrophe-corp/daohub/ledger"
	"github.com/spf13/cobra"
)

type initArguments struct {
	Home      string
	Overwrite bool
}

var initArgs initArguments

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the config file and an account secret",
	Args:  cobra.ExactArgs(0),
	RunE:  initRun,
}

func init() {
	homeFlag(initCmd, &initArgs.Home)
	initCmd.Flags().BoolVarP(&initArgs.Overwrite, "overwrite", "o", false, "overwrite existing files")
}

func initRun(cmd *cobra.Command, args []string) error {
	cfg := app_config.DefaultConfig(initArgs.Home)

	if _, err := os.Stat(cfg.ConfigFile()); err == nil && !initArgs.Overwrite {
		return fmt.Errorf("config file %s already exists, use -o to overwrite", cfg.ConfigFile())
	}
	if err := app_config.WriteConfigFile(cfg.ConfigFile(), cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", cfg.ConfigFile())

	if _, err := os.Stat(cfg.KeyFile()); err == nil && !initArgs.Overwrite {
		fmt.Printf("keeping existing key file %s\n", cfg.KeyFile())
		return nil
	}
	acct, err := ledger.NewRandomAccount()
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.KeyFile(), []byte(acct.Secret()), 0o600); err != nil {
		return err
	}
	fmt.Printf("wrote %s\naccount address: %s\n", cfg.KeyFile(), acct.Address)
	return nil
}
