package main

import "github.com/spf13/cobra"

func homeFlag(cmd *cobra.Command, home *string) {
	cmd.Flags().StringVarP(home, "homedir", "d", "", "home directory")
}

func urlFlag(cmd *cobra.Command, url *string) {
	cmd.Flags().StringVarP(url, "url", "u", "", "chain node rpc url, overrides the config file")
}
