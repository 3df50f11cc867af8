package tgcore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/open-control-systems/netwatch/components/monitor/moncore"
	"github.com/open-control-systems/netwatch/components/monitor/monsched"
)

// Sink delivers monitoring notifications to Telegram chats.
//
// Remarks:
//   - Subscriber ID is a Telegram chat ID.
//   - Replace messages edit the last message sent for the same chat and kind,
//     if it was sent by the same session.
//   - Messages of a session older than the tracked one are sent as new messages
//     and don't update the tracked message.
type Sink struct {
	client *Client

	mu       sync.Mutex
	messages map[moncore.Key]sentMessage
}

type sentMessage struct {
	sessionID uint64
	messageID int64
}

// NewSink is an initialization of Sink.
func NewSink(client *Client) *Sink {
	return &Sink{
		client:   client,
		messages: make(map[moncore.Key]sentMessage),
	}
}

// Send delivers the message to the Telegram chat.
func (s *Sink) Send(ctx context.Context, subscriberID string, msg monsched.Message) error {
	chatID, err := strconv.ParseInt(subscriberID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram-sink: invalid chat: id=%s: %w: %w",
			subscriberID, monsched.ErrDeliveryFailed, err)
	}

	key := moncore.Key{SubscriberID: subscriberID, Kind: msg.Kind}

	var markup *InlineKeyboardMarkup
	if msg.Stop {
		markup = stopKeyboard(msg.Kind)
	}

	if msg.Replace {
		if last, ok := s.lastMessage(key); ok && last.sessionID == msg.SessionID {
			err := s.client.EditMessageText(ctx, EditMessageTextRequest{
				ChatID:      chatID,
				MessageID:   last.messageID,
				Text:        msg.Text,
				ReplyMarkup: markup,
			})
			if err == nil || isNotModified(err) {
				return nil
			}

			return fmt.Errorf("telegram-sink: failed to edit message: chat=%d: %w: %w",
				chatID, monsched.ErrDeliveryFailed, err)
		}
	}

	sent, err := s.client.SendMessage(ctx, SendMessageRequest{
		ChatID:      chatID,
		Text:        msg.Text,
		ReplyMarkup: markup,
	})
	if err != nil {
		return fmt.Errorf("telegram-sink: failed to send message: chat=%d: %w: %w",
			chatID, monsched.ErrDeliveryFailed, err)
	}

	s.mu.Lock()
	if last, ok := s.messages[key]; !ok || last.sessionID <= msg.SessionID {
		s.messages[key] = sentMessage{sessionID: msg.SessionID, messageID: sent.MessageID}
	}
	s.mu.Unlock()

	return nil
}

func (s *Sink) lastMessage(key moncore.Key) (sentMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.messages[key]

	return last, ok
}

func stopKeyboard(kind moncore.Kind) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{{
			{Text: "🛑 Stop", CallbackData: stopCallbackPrefix + string(kind)},
		}},
	}
}

// Telegram rejects edits that don't change the message.
func isNotModified(err error) bool {
	var apiErr *APIError

	return errors.As(err, &apiErr) && strings.Contains(apiErr.Description, "message is not modified")
}
