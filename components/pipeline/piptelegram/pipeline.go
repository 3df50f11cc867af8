package piptelegram

import (
	"context"
	"fmt"
	"time"

	"github.com/open-control-systems/netwatch/components/core"
	"github.com/open-control-systems/netwatch/components/http/htcore"
	"github.com/open-control-systems/netwatch/components/status"
	"github.com/open-control-systems/netwatch/components/storage/stcore"
	"github.com/open-control-systems/netwatch/components/system/syssched"
	"github.com/open-control-systems/netwatch/components/telegram/tgcore"
)

// PipelineParams represents various options for the Telegram pipeline.
type PipelineParams struct {
	Client tgcore.ClientParams
	Bot    tgcore.BotParams

	// PollInterval - pause between the long polling requests.
	PollInterval time.Duration
}

// Pipeline contains the Telegram building blocks: the notification sink and the command bot.
type Pipeline struct {
	ctx    context.Context
	closer *core.FanoutCloser
	db     stcore.DB
	params PipelineParams
	client *tgcore.Client
	sink   *tgcore.Sink
}

// NewPipeline initializes the Telegram pipeline.
//
// Parameters:
//   - ctx - parent context.
//   - closer - to register all resources that should be closed.
//   - db to persist the bot state.
//   - params - various pipeline options.
func NewPipeline(
	ctx context.Context,
	closer *core.FanoutCloser,
	db stcore.DB,
	params PipelineParams,
) (*Pipeline, error) {
	if params.Client.Token == "" {
		return nil, fmt.Errorf("telegram-pipeline: missed bot token: %w", status.StatusInvalidArg)
	}

	if params.PollInterval <= 0 {
		params.PollInterval = time.Second
	}

	client := tgcore.NewClient(htcore.NewDefaultClient(), params.Client)

	return &Pipeline{
		ctx:    ctx,
		closer: closer,
		db:     db,
		params: params,
		client: client,
		sink:   tgcore.NewSink(client),
	}, nil
}

// GetSink returns the component to deliver notifications to Telegram chats.
func (p *Pipeline) GetSink() *tgcore.Sink {
	return p.sink
}

// Start starts handling the subscriber commands.
func (p *Pipeline) Start(monitor tgcore.Monitor) error {
	bot, err := tgcore.NewBot(p.ctx, p.client, monitor, p.db, p.params.Bot)
	if err != nil {
		return err
	}

	runner := syssched.NewAsyncTaskRunner(p.ctx, bot, syssched.NewLogErrorHandler("telegram-bot"),
		syssched.AsyncTaskRunnerParams{
			UpdateInterval: p.params.PollInterval,
			RunOnStart:     true,
		})
	if err := runner.Start(); err != nil {
		return err
	}
	p.closer.Add("telegram-bot", core.FuncCloser(runner.Stop))

	core.LogInf.Printf("telegram-pipeline: bot started: allowed_chats=%d\n",
		len(p.params.Bot.AllowedChats))

	return nil
}
