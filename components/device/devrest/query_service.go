package devrest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/open-control-systems/netwatch/components/core"
	"github.com/open-control-systems/netwatch/components/device/devcore"
	"github.com/open-control-systems/netwatch/components/http/htcore"
	"github.com/open-control-systems/netwatch/components/status"
	"github.com/open-control-systems/netwatch/components/system/syscore"
)

// QueryServiceParams represents various options for the RouterOS REST query service.
type QueryServiceParams struct {
	// BaseURL - device base URL, e.g. http://router.local.
	BaseURL string

	// User and Password are used for the HTTP basic authentication.
	User     string
	Password string

	// Timeout - how long to wait for the device response.
	Timeout time.Duration

	// Topics - log topics considered relevant, "hotspot" is used if empty.
	Topics []string

	// Keywords - log message keywords considered relevant,
	// "login", "logout" and "hotspot" are used if empty.
	Keywords []string
}

// QueryService queries the device state over the RouterOS REST API.
//
// References:
//   - https://help.mikrotik.com/docs/display/ROS/REST+API
type QueryService struct {
	client *htcore.HTTPClient
	clock  syscore.MonotonicClock
	params QueryServiceParams
}

// NewQueryService is an initialization of QueryService.
//
// Parameters:
//   - client to perform HTTP requests.
//   - clock to interpret log timestamps reported without a date.
//   - params - various query options.
func NewQueryService(
	client *htcore.HTTPClient,
	clock syscore.MonotonicClock,
	params QueryServiceParams,
) *QueryService {
	if len(params.Topics) == 0 {
		params.Topics = []string{"hotspot"}
	}
	if len(params.Keywords) == 0 {
		params.Keywords = []string{"login", "logout", "hotspot"}
	}

	params.BaseURL = strings.TrimSuffix(params.BaseURL, "/")

	return &QueryService{
		client: client,
		clock:  clock,
		params: params,
	}
}

type restLogRecord struct {
	ID      string `json:".id"`
	Time    string `json:"time"`
	Topics  string `json:"topics"`
	Message string `json:"message"`
}

type restInterface struct {
	ID       string `json:".id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Running  string `json:"running"`
	RxByte   string `json:"rx-byte"`
	TxByte   string `json:"tx-byte"`
	Disabled string `json:"disabled"`
}

// QueryLogs returns relevant log records in chronological order.
//
// Remarks:
//   - filter.Since is a host clock reading, it is shifted by the device clock offset
//     before it is compared with the record time.
//   - filter.Since is ignored if the device clock can't be read.
//   - Records with unparseable time are never excluded by filter.Since.
//   - The most recent filter.Limit records are returned if filter.Limit is positive.
func (s *QueryService) QueryLogs(
	ctx context.Context,
	filter devcore.LogFilter,
) ([]devcore.LogRecord, error) {
	var items []restLogRecord
	if err := s.get(ctx, "/rest/log", nil, &items); err != nil {
		return nil, err
	}

	now := s.clock.Now()

	var (
		since       time.Time
		deviceNow   time.Time
		filterSince bool
	)

	if !filter.Since.IsZero() {
		ts, err := s.deviceTime(ctx, now)
		if err != nil {
			core.LogWrn.Printf("devrest: time filter disabled: failed to read device clock: %v\n",
				err)
		} else {
			deviceNow = ts
			since = filter.Since.Add(deviceNow.Sub(now)).Truncate(time.Second)
			filterSince = true
		}
	}

	var records []devcore.LogRecord

	for _, item := range items {
		if !s.isRelevant(item) {
			continue
		}

		if filterSince {
			if ts, ok := parseLogTime(item.Time, deviceNow); ok && ts.Before(since) {
				continue
			}
		}

		records = append(records, devcore.LogRecord{
			ID:      item.ID,
			Time:    item.Time,
			Message: item.Message,
			Topics:  item.Topics,
		})
	}

	if filter.Limit > 0 && len(records) > filter.Limit {
		records = records[len(records)-filter.Limit:]
	}

	return records, nil
}

type restClock struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// deviceTime returns the device wall clock interpreted in the host location,
// the same way the log timestamps are interpreted.
func (s *QueryService) deviceTime(ctx context.Context, now time.Time) (time.Time, error) {
	var clock restClock
	if err := s.get(ctx, "/rest/system/clock", nil, &clock); err != nil {
		return time.Time{}, err
	}

	value := strings.TrimSpace(clock.Date + " " + clock.Time)

	ts, ok := parseLogTime(value, now)
	if !ok {
		return time.Time{}, fmt.Errorf("devrest: invalid device clock: value=%q: %w",
			value, status.StatusError)
	}

	return ts, nil
}

// QueryCounters returns the current byte counters of the target interface.
func (s *QueryService) QueryCounters(
	ctx context.Context,
	target string,
) (devcore.Counters, error) {
	var items []restInterface

	query := url.Values{}
	query.Set("name", target)

	if err := s.get(ctx, "/rest/interface", query, &items); err != nil {
		return devcore.Counters{}, err
	}

	for _, item := range items {
		if item.Name == target {
			return makeCounters(item)
		}
	}

	return devcore.Counters{}, fmt.Errorf("devrest: interface=%s: %w", target, devcore.ErrNotFound)
}

// QueryInterfaces returns counters of all device interfaces.
func (s *QueryService) QueryInterfaces(ctx context.Context) ([]devcore.Counters, error) {
	var items []restInterface
	if err := s.get(ctx, "/rest/interface", nil, &items); err != nil {
		return nil, err
	}

	var ret []devcore.Counters

	for _, item := range items {
		counters, err := makeCounters(item)
		if err != nil {
			return nil, err
		}

		ret = append(ret, counters)
	}

	return ret, nil
}

func (s *QueryService) get(ctx context.Context, path string, query url.Values, dst any) error {
	u := s.params.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	fetcher := htcore.NewURLFetcher(ctx, s.client, htcore.URLFetcherParams{
		URL:      u,
		Timeout:  s.params.Timeout,
		User:     s.params.User,
		Password: s.params.Password,
	})

	buf, err := fetcher.Fetch()
	if err != nil {
		return fmt.Errorf("devrest: failed to fetch: path=%s: %w", path, mapError(err))
	}

	if err := json.Unmarshal(buf, dst); err != nil {
		return fmt.Errorf("devrest: failed to decode: path=%s: %w: %w",
			path, status.StatusError, err)
	}

	return nil
}

func (s *QueryService) isRelevant(item restLogRecord) bool {
	topics := strings.ToLower(item.Topics)
	for _, topic := range s.params.Topics {
		if strings.Contains(topics, strings.ToLower(topic)) {
			return true
		}
	}

	message := strings.ToLower(item.Message)
	for _, keyword := range s.params.Keywords {
		if strings.Contains(message, strings.ToLower(keyword)) {
			return true
		}
	}

	return false
}

func makeCounters(item restInterface) (devcore.Counters, error) {
	rx, err := parseCounter(item.RxByte)
	if err != nil {
		return devcore.Counters{}, fmt.Errorf("devrest: invalid rx-byte: interface=%s: %w",
			item.Name, err)
	}

	tx, err := parseCounter(item.TxByte)
	if err != nil {
		return devcore.Counters{}, fmt.Errorf("devrest: invalid tx-byte: interface=%s: %w",
			item.Name, err)
	}

	return devcore.Counters{
		Name:             item.Name,
		Type:             item.Type,
		Running:          item.Running == "true",
		ReceivedBytes:    rx,
		TransmittedBytes: tx,
	}, nil
}

func parseCounter(value string) (uint64, error) {
	if value == "" {
		return 0, nil
	}

	return strconv.ParseUint(value, 10, 64)
}
