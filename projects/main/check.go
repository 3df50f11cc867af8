package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/open-control-systems/netwatch/components/core"
	"github.com/open-control-systems/netwatch/components/device/devcore"
	"github.com/open-control-systems/netwatch/components/monitor/moncore"
	"github.com/open-control-systems/netwatch/components/pipeline/pipmon"
	"github.com/open-control-systems/netwatch/components/system/syscore"
)

func newCheckCmd(loadConfig func() (*Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Query the device once",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "logs",
			Short: "Show the recent relevant log records and how they are classified",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withQueryService(cmd.Context(), loadConfig,
					func(ctx context.Context, service devcore.QueryService, config *Config) error {
						return checkLogs(ctx, cmd.OutOrStdout(), service, config)
					})
			},
		},
		&cobra.Command{
			Use:   "interfaces",
			Short: "Show the device interfaces and their byte counters",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withQueryService(cmd.Context(), loadConfig,
					func(ctx context.Context, service devcore.QueryService, _ *Config) error {
						ifaces, err := service.QueryInterfaces(ctx)
						if err != nil {
							return err
						}

						for _, iface := range ifaces {
							printCounters(cmd.OutOrStdout(), iface)
						}

						return nil
					})
			},
		},
		&cobra.Command{
			Use:   "interface <name>",
			Short: "Show the byte counters of the interface",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withQueryService(cmd.Context(), loadConfig,
					func(ctx context.Context, service devcore.QueryService, _ *Config) error {
						counters, err := service.QueryCounters(ctx, args[0])
						if err != nil {
							return err
						}

						printCounters(cmd.OutOrStdout(), counters)

						return nil
					})
			},
		},
	)

	return cmd
}

func withQueryService(
	parent context.Context,
	loadConfig func() (*Config, error),
	fn func(ctx context.Context, service devcore.QueryService, config *Config) error,
) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	closer := &core.FanoutCloser{}
	defer func() {
		_ = closer.Close()
	}()

	service, err := pipmon.NewQueryService(parent, closer, &syscore.LocalMonotonicClock{},
		deviceParams(config), mdnsParams(config))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(parent, config.Device.Timeout)
	defer cancel()

	return fn(ctx, service, config)
}

func checkLogs(ctx context.Context, w io.Writer, service devcore.QueryService, config *Config) error {
	records, err := service.QueryLogs(ctx, devcore.LogFilter{Limit: config.Device.LogLimit})
	if err != nil {
		return err
	}

	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "no relevant log records")
		return err
	}

	opts := moncore.Options{IncludeFailed: config.Monitor.IncludeFailed}

	for _, record := range records {
		activity := moncore.Classify(record)

		delivered := "skip"
		if moncore.IsDeliverable(activity, opts) {
			delivered = "send"
		}

		if _, err := fmt.Fprintf(w, "%s\t%-7s\t%-4s\tuser=%s\t%s\n",
			record.Time, activity.EventType, delivered, activity.Username, record.Message); err != nil {
			return err
		}
	}

	return nil
}

func printCounters(w io.Writer, counters devcore.Counters) {
	_, _ = fmt.Fprintf(w, "%s\ttype=%s\trunning=%t\trx=%d\ttx=%d\n",
		counters.Name, counters.Type, counters.Running,
		counters.ReceivedBytes, counters.TransmittedBytes)
}
