package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "netwatch",
		Short:        "Router telemetry monitoring hub",
		Long:         "netwatch polls a RouterOS device, reports hotspot user activity and interface throughput to Telegram subscribers and exports the data to influxDB.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file path (YAML), NETWATCH_* environment variables override it")

	loadConfig := func() (*Config, error) {
		return LoadConfig(configPath)
	}

	rootCmd.AddCommand(
		newRunCmd(loadConfig),
		newCheckCmd(loadConfig),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "netwatch %s (commit=%s date=%s)\n",
				version, commit, date)

			return err
		},
	}
}
