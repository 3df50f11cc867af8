package tgcore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/open-control-systems/netwatch/components/http/htcore"
)

// DefaultAPIURL is the Telegram Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// APIError is returned when Telegram rejects the request.
type APIError struct {
	Method      string
	Code        int
	Description string
}

// Error implements error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: method=%s code=%d: %s", e.Method, e.Code, e.Description)
}

// ClientParams represents various options for Client.
type ClientParams struct {
	// APIURL - Telegram Bot API URL, DefaultAPIURL is used if empty.
	APIURL string

	// Token - bot token.
	Token string

	// Timeout - how long to wait for the regular API calls.
	Timeout time.Duration
}

// Client is a minimal Telegram Bot API client.
//
// References:
//   - https://core.telegram.org/bots/api
type Client struct {
	client  *htcore.HTTPClient
	baseURL string
	timeout time.Duration
}

// NewClient is an initialization of Client.
func NewClient(client *htcore.HTTPClient, params ClientParams) *Client {
	if params.APIURL == "" {
		params.APIURL = DefaultAPIURL
	}
	if params.Timeout <= 0 {
		params.Timeout = time.Second * 10
	}

	return &Client{
		client:  client,
		baseURL: strings.TrimSuffix(params.APIURL, "/") + "/bot" + params.Token,
		timeout: params.Timeout,
	}
}

// SendMessage sends a new text message.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (Message, error) {
	var msg Message

	if err := c.call(ctx, c.timeout, "sendMessage", req, &msg); err != nil {
		return Message{}, err
	}

	return msg, nil
}

// EditMessageText updates the text of the previously sent message.
func (c *Client) EditMessageText(ctx context.Context, req EditMessageTextRequest) error {
	return c.call(ctx, c.timeout, "editMessageText", req, nil)
}

// AnswerCallbackQuery acknowledges the callback query.
func (c *Client) AnswerCallbackQuery(ctx context.Context, id string, text string) error {
	return c.call(ctx, c.timeout, "answerCallbackQuery", answerCallbackQueryRequest{
		CallbackQueryID: id,
		Text:            text,
	}, nil)
}

// GetUpdates long-polls incoming updates.
//
// Parameters:
//   - offset - identifier of the first update to be returned.
//   - timeout - long polling timeout.
func (c *Client) GetUpdates(
	ctx context.Context,
	offset int64,
	timeout time.Duration,
) ([]Update, error) {
	var updates []Update

	if err := c.call(ctx, timeout+c.timeout, "getUpdates", getUpdatesRequest{
		Offset:         offset,
		Timeout:        int(timeout.Seconds()),
		AllowedUpdates: []string{"message", "callback_query"},
	}, &updates); err != nil {
		return nil, err
	}

	return updates, nil
}

func (c *Client) call(
	ctx context.Context,
	timeout time.Duration,
	method string,
	req any,
	result any,
) error {
	buf, err := json.Marshal(req)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/"+method, bytes.NewReader(buf))
	if err != nil {
		return err
	}

	httpReq.Header.Set("Content-Type", "application/json")

	_, body, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("telegram: method=%s: %w", method, err)
	}

	var resp struct {
		response
		Result json.RawMessage `json:"result"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("telegram: method=%s: invalid response: %w", method, err)
	}

	if !resp.OK {
		return &APIError{
			Method:      method,
			Code:        resp.ErrorCode,
			Description: resp.Description,
		}
	}

	if result == nil || len(resp.Result) == 0 {
		return nil
	}

	return json.Unmarshal(resp.Result, result)
}
