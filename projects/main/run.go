package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/open-control-systems/netwatch/components/core"
	"github.com/open-control-systems/netwatch/components/device/devrest"
	"github.com/open-control-systems/netwatch/components/http/htcore"
	"github.com/open-control-systems/netwatch/components/monitor/moncore"
	"github.com/open-control-systems/netwatch/components/monitor/monsched"
	"github.com/open-control-systems/netwatch/components/pipeline/piphttp"
	"github.com/open-control-systems/netwatch/components/pipeline/pipmon"
	"github.com/open-control-systems/netwatch/components/pipeline/piptelegram"
	"github.com/open-control-systems/netwatch/components/storage/stcore"
	"github.com/open-control-systems/netwatch/components/storage/stinfluxdb"
	"github.com/open-control-systems/netwatch/components/system/syscore"
	"github.com/open-control-systems/netwatch/components/telegram/tgcore"
)

func newRunCmd(loadConfig func() (*Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the monitoring hub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			if err := core.SetupLogger(core.LogParams{
				Path:  config.Log.Path,
				Level: config.Log.Level,
			}); err != nil {
				return fmt.Errorf("failed to setup logger: %w", err)
			}
			defer core.SyncLogger()

			return run(cmd.Context(), config)
		},
	}
}

func run(parent context.Context, config *Config) error {
	ctx, cancel := signal.NotifyContext(parent,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	defer cancel()

	core.Logger().Info("starting netwatch",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("build_date", date),
		zap.Any("config", config.Masked()),
	)

	closer := &core.FanoutCloser{}
	defer func() {
		if err := closer.Close(); err != nil {
			core.LogErr.Printf("netwatch: failed to close resources: %v\n", err)
		}
	}()

	db, err := openDB(closer, config)
	if err != nil {
		return err
	}

	clock := &syscore.LocalMonotonicClock{}

	var dataHandler moncore.DataHandler
	if config.InfluxDB.URL != "" {
		dataHandler = stinfluxdb.NewDataHandler(ctx, closer, clock, stinfluxdb.DBParams{
			URL:    config.InfluxDB.URL,
			Org:    config.InfluxDB.Org,
			Token:  config.InfluxDB.Token,
			Bucket: config.InfluxDB.Bucket,
		})
	}

	var (
		sink             monsched.Sink = monsched.LogSink{}
		telegramPipeline *piptelegram.Pipeline
	)

	if config.Telegram.Token != "" {
		telegramPipeline, err = piptelegram.NewPipeline(ctx, closer, db, piptelegram.PipelineParams{
			Client: tgcore.ClientParams{
				APIURL: config.Telegram.APIURL,
				Token:  config.Telegram.Token,
			},
			Bot: tgcore.BotParams{
				PollTimeout:   config.Telegram.PollTimeout,
				AllowedChats:  config.Telegram.AllowedChats,
				IncludeFailed: config.Monitor.IncludeFailed,
			},
		})
		if err != nil {
			return err
		}

		sink = telegramPipeline.GetSink()
	} else {
		core.LogWrn.Printf("netwatch: telegram token isn't set, notifications are logged\n")
	}

	monitorPipeline, err := pipmon.NewPipeline(ctx, closer, clock, sink, dataHandler,
		pipmon.PipelineParams{
			Device: deviceParams(config),
			MDNS:   mdnsParams(config),
			Scheduler: monsched.Params{
				LogInterval:        config.Monitor.LogInterval,
				ThroughputInterval: config.Monitor.ThroughputInterval,
				FailureThreshold:   config.Monitor.FailureThreshold,
				LogLimit:           config.Device.LogLimit,
				QueryTimeout:       config.Device.Timeout,
				SendTimeout:        config.Monitor.SendTimeout,
			},
			DedupCapacity: config.Monitor.DedupCapacity,
			MinInterval:   config.Monitor.MinInterval,
		})
	if err != nil {
		return err
	}

	scheduler := monitorPipeline.GetScheduler()

	if telegramPipeline != nil {
		if err := telegramPipeline.Start(scheduler); err != nil {
			return err
		}
	}

	if config.HTTP.Enabled {
		serverPipeline, err := piphttp.NewServerPipeline(closer, scheduler,
			piphttp.ServerPipelineParams{
				Server: htcore.ServerParams{
					Host: config.HTTP.Host,
					Port: config.HTTP.Port,
				},
				IncludeFailed: config.Monitor.IncludeFailed,
			})
		if err != nil {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}

		serverPipeline.Start()
	}

	<-ctx.Done()

	core.LogInf.Printf("netwatch: shutting down\n")

	return nil
}

func openDB(closer *core.FanoutCloser, config *Config) (stcore.DB, error) {
	if config.Storage.Path == "" {
		return &stcore.NoopDB{}, nil
	}

	db, err := stcore.NewBboltDB(config.Storage.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: path=%s: %w", config.Storage.Path, err)
	}
	closer.Add("bbolt-db", db)

	return stcore.NewBboltDBBucket(db, "netwatch"), nil
}

func deviceParams(config *Config) devrest.QueryServiceParams {
	return devrest.QueryServiceParams{
		BaseURL:  config.Device.URL,
		User:     config.Device.User,
		Password: config.Device.Password,
		Timeout:  config.Device.Timeout,
		Topics:   config.Device.Topics,
		Keywords: config.Device.Keywords,
	}
}

func mdnsParams(config *Config) pipmon.MDNSParams {
	return pipmon.MDNSParams{
		Enabled:        config.Device.MDNS.Enabled,
		Service:        config.Device.MDNS.Service,
		BrowseInterval: config.Device.MDNS.BrowseInterval,
		BrowseTimeout:  config.Device.MDNS.BrowseTimeout,
	}
}
