package tgcore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/open-control-systems/netwatch/components/core"
	"github.com/open-control-systems/netwatch/components/device/devcore"
	"github.com/open-control-systems/netwatch/components/monitor/moncore"
	"github.com/open-control-systems/netwatch/components/monitor/monsched"
	"github.com/open-control-systems/netwatch/components/monitor/monstore"
	"github.com/open-control-systems/netwatch/components/status"
	"github.com/open-control-systems/netwatch/components/storage/stcore"
)

const offsetKey = "telegram_offset"

const helpText = `📡 Router monitoring bot

/monitor - watch hotspot logins and logouts
/traffic <interface> [interval] - watch interface speed, e.g. /traffic ether1 5s
/interfaces - choose an interface to watch
/stop [log|traffic] - stop monitoring
/status [log|traffic] - show monitoring status
/help - show this message`

// Monitor is a set of the monitoring operations available to the bot.
type Monitor interface {
	StartLogMonitoring(subscriberID string, opts moncore.Options) (moncore.Snapshot, error)

	StartThroughputMonitoring(
		subscriberID string,
		target string,
		interval time.Duration,
	) (moncore.Snapshot, error)

	StopMonitoring(subscriberID string, kind moncore.Kind) error

	GetStatus(subscriberID string, kind moncore.Kind) (moncore.Snapshot, bool)

	// QueryInterfaces returns the interfaces available for the throughput monitoring.
	QueryInterfaces(ctx context.Context) ([]devcore.Counters, error)
}

// BotParams represents various options for Bot.
type BotParams struct {
	// PollTimeout - long polling timeout of getUpdates.
	PollTimeout time.Duration

	// AllowedChats - chats the bot accepts commands from, empty means any chat.
	AllowedChats []int64

	// IncludeFailed - deliver failed login attempts to the log monitoring subscribers.
	IncludeFailed bool
}

// Bot receives the subscriber commands from Telegram and dispatches them to Monitor.
//
// Remarks:
//   - Each Run() performs a single long polling request, it should be
//     called periodically by syssched.AsyncTaskRunner.
//   - The update offset is persisted, so the handled commands are not replayed on restart.
type Bot struct {
	ctx     context.Context
	client  *Client
	monitor Monitor
	db      stcore.DB
	params  BotParams
	allowed map[int64]struct{}
	offset  int64
}

// NewBot is an initialization of Bot.
//
// Parameters:
//   - ctx - parent context for the Telegram API calls.
//   - client to communicate with the Telegram Bot API.
//   - monitor to handle the commands.
//   - db to persist the update offset.
//   - params - various bot options.
func NewBot(
	ctx context.Context,
	client *Client,
	monitor Monitor,
	db stcore.DB,
	params BotParams,
) (*Bot, error) {
	if params.PollTimeout <= 0 {
		params.PollTimeout = time.Second * 25
	}

	bot := &Bot{
		ctx:     ctx,
		client:  client,
		monitor: monitor,
		db:      db,
		params:  params,
		allowed: make(map[int64]struct{}),
	}

	for _, id := range params.AllowedChats {
		bot.allowed[id] = struct{}{}
	}

	offset, err := bot.readOffset()
	if err != nil {
		return nil, err
	}

	bot.offset = offset

	return bot, nil
}

// Run fetches the pending updates and handles them.
func (b *Bot) Run() error {
	updates, err := b.client.GetUpdates(b.ctx, b.offset, b.params.PollTimeout)
	if err != nil {
		if b.ctx.Err() != nil {
			return nil
		}

		return fmt.Errorf("telegram-bot: failed to get updates: %w", err)
	}

	if len(updates) == 0 {
		return nil
	}

	for _, update := range updates {
		b.handleUpdate(update)

		if update.UpdateID >= b.offset {
			b.offset = update.UpdateID + 1
		}
	}

	return b.writeOffset()
}

func (b *Bot) handleUpdate(update Update) {
	switch {
	case update.Message != nil:
		msg := update.Message
		if !b.isAllowed(msg.Chat.ID) {
			core.LogWrn.Printf("telegram-bot: ignore message: chat=%d\n", msg.Chat.ID)
			return
		}

		cmd, err := ParseCommand(msg.Text)
		if err != nil {
			if errors.Is(err, status.StatusNotSupported) {
				cmd = HelpCommand{}
			} else {
				b.reply(msg.Chat.ID, "⚠️ "+err.Error(), nil)
				return
			}
		}

		text, markup := b.dispatch(msg.Chat.ID, cmd)
		b.reply(msg.Chat.ID, text, markup)

	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		if query.Message == nil || !b.isAllowed(query.Message.Chat.ID) {
			b.answer(query.ID, "")
			return
		}

		cmd, err := ParseCallback(query.Data)
		if err != nil {
			b.answer(query.ID, "⚠️ Unknown action")
			return
		}

		text, markup := b.dispatch(query.Message.Chat.ID, cmd)
		b.answer(query.ID, "")
		b.reply(query.Message.Chat.ID, text, markup)
	}
}

// dispatch handles the command and returns the reply, empty text means no reply.
func (b *Bot) dispatch(chatID int64, cmd Command) (string, *InlineKeyboardMarkup) {
	subscriberID := strconv.FormatInt(chatID, 10)

	switch c := cmd.(type) {
	case StartLogCommand:
		_, err := b.monitor.StartLogMonitoring(subscriberID, moncore.Options{
			IncludeFailed: b.params.IncludeFailed,
		})
		return errorText(err), nil

	case StartThroughputCommand:
		_, err := b.monitor.StartThroughputMonitoring(subscriberID, c.Target, c.Interval)
		return errorText(err), nil

	case StopCommand:
		return b.stop(subscriberID, c.Kind), nil

	case StatusCommand:
		return b.status(subscriberID, c.Kind), nil

	case InterfacesCommand:
		return b.interfaces()

	case HelpCommand:
		return helpText, nil

	default:
		return "", nil
	}
}

func (b *Bot) stop(subscriberID string, kind moncore.Kind) string {
	if kind != "" {
		return errorText(b.monitor.StopMonitoring(subscriberID, kind))
	}

	stopped := false

	for _, k := range []moncore.Kind{moncore.KindLogActivity, moncore.KindThroughput} {
		if err := b.monitor.StopMonitoring(subscriberID, k); err == nil {
			stopped = true
		}
	}

	if !stopped {
		return errorText(monstore.ErrNotActive)
	}

	return ""
}

func (b *Bot) status(subscriberID string, kind moncore.Kind) string {
	kinds := []moncore.Kind{moncore.KindLogActivity, moncore.KindThroughput}
	if kind != "" {
		kinds = []moncore.Kind{kind}
	}

	var reports []string

	for _, k := range kinds {
		if snapshot, ok := b.monitor.GetStatus(subscriberID, k); ok {
			reports = append(reports, monsched.FormatStatus(snapshot))
		}
	}

	if len(reports) == 0 {
		return "ℹ️ Monitoring is not active."
	}

	return strings.Join(reports, "\n\n")
}

func (b *Bot) interfaces() (string, *InlineKeyboardMarkup) {
	ifaces, err := b.monitor.QueryInterfaces(b.ctx)
	if err != nil {
		core.LogErr.Printf("telegram-bot: failed to query interfaces: %v\n", err)
		return errorText(err), nil
	}

	if len(ifaces) == 0 {
		return "ℹ️ No interfaces found.", nil
	}

	markup := &InlineKeyboardMarkup{}

	for _, iface := range ifaces {
		icon := "🔴"
		if iface.Running {
			icon = "🟢"
		}

		markup.InlineKeyboard = append(markup.InlineKeyboard, []InlineKeyboardButton{{
			Text:         fmt.Sprintf("%s %s", icon, iface.Name),
			CallbackData: trafficCallbackPrefix + iface.Name,
		}})
	}

	return "🔌 Choose an interface to monitor:", markup
}

func (b *Bot) reply(chatID int64, text string, markup *InlineKeyboardMarkup) {
	if text == "" {
		return
	}

	if _, err := b.client.SendMessage(b.ctx, SendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	}); err != nil {
		core.LogErr.Printf("telegram-bot: failed to reply: chat=%d err=%v\n", chatID, err)
	}
}

func (b *Bot) answer(id string, text string) {
	if err := b.client.AnswerCallbackQuery(b.ctx, id, text); err != nil {
		core.LogErr.Printf("telegram-bot: failed to answer callback: id=%s err=%v\n", id, err)
	}
}

func (b *Bot) isAllowed(chatID int64) bool {
	if len(b.allowed) == 0 {
		return true
	}

	_, ok := b.allowed[chatID]

	return ok
}

func (b *Bot) readOffset() (int64, error) {
	blob, err := b.db.Read(offsetKey)
	if err != nil {
		if errors.Is(err, status.StatusNoData) {
			return 0, nil
		}

		return 0, fmt.Errorf("telegram-bot: failed to read offset: %w", err)
	}

	offset, err := strconv.ParseInt(string(blob.Data), 10, 64)
	if err != nil {
		core.LogWrn.Printf("telegram-bot: drop invalid offset: value=%q\n", blob.Data)

		return 0, b.db.Remove(offsetKey)
	}

	return offset, nil
}

func (b *Bot) writeOffset() error {
	if err := b.db.Write(offsetKey, stcore.Blob{
		Data: []byte(strconv.FormatInt(b.offset, 10)),
	}); err != nil {
		return fmt.Errorf("telegram-bot: failed to write offset: %w", err)
	}

	return nil
}

// errorText converts the operation error to the subscriber reply, empty if err is nil.
func errorText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, monstore.ErrAlreadyActive):
		return "⚠️ Monitoring already active!"
	case errors.Is(err, monstore.ErrNotActive):
		return "ℹ️ Monitoring is not active."
	case errors.Is(err, devcore.ErrNotFound):
		return "❌ Interface not found."
	case errors.Is(err, devcore.ErrAuthFailed):
		return "❌ Router rejected the credentials."
	case errors.Is(err, devcore.ErrUnreachable), errors.Is(err, devcore.ErrTimeout):
		return "❌ Router is unreachable."
	case errors.Is(err, status.StatusInvalidArg):
		return "⚠️ Invalid arguments."
	default:
		return "❌ Operation failed."
	}
}
