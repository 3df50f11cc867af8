package stinfluxdb

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/open-control-systems/netwatch/components/core"
	"github.com/open-control-systems/netwatch/components/monitor/moncore"
	"github.com/open-control-systems/netwatch/components/system/syscore"
)

// DataHandler stores user activities and throughput samples in influxDB.
//
// References:
//   - https://docs.influxdata.com/influxdb/cloud/get-started
//   - https://docs.influxdata.com/influxdb/cloud/api-guide/client-libraries/go/
type DataHandler struct {
	ctx         context.Context
	clock       syscore.MonotonicClock
	dbClient    influxdb2.Client
	writeClient api.WriteAPIBlocking
	timeout     time.Duration
}

// NewDataHandler initializes influxDB handler.
//
// Parameters:
//   - ctx - parent context.
//   - closer - to register the handler for the underlying resource deallocation.
//   - clock to timestamp user activities.
//   - params - various influxDB configuration parameters.
func NewDataHandler(
	ctx context.Context,
	closer *core.FanoutCloser,
	clock syscore.MonotonicClock,
	params DBParams,
) *DataHandler {
	dbClient := influxdb2.NewClient(params.URL, params.Token)
	writeClient := dbClient.WriteAPIBlocking(params.Org, params.Bucket)

	if params.WriteTimeout <= 0 {
		params.WriteTimeout = time.Second * 5
	}

	handler := &DataHandler{
		ctx:         ctx,
		clock:       clock,
		dbClient:    dbClient,
		writeClient: writeClient,
		timeout:     params.WriteTimeout,
	}

	closer.Add("influxdb-data-handler", handler)

	core.LogInf.Printf("influxdb-data-handler: started: url=%s org=%s bucket=%s\n",
		params.URL, params.Org, params.Bucket)

	return handler
}

// HandleActivity stores the user activity in influxDB.
func (h *DataHandler) HandleActivity(subscriberID string, activity moncore.ActivityRecord) error {
	fields := map[string]any{
		"message": activity.RawMessage,
		"time":    activity.Timestamp,
	}

	if activity.SourceAddress != "" {
		fields["ip"] = activity.SourceAddress
	}

	if activity.HardwareAddress != "" {
		fields["mac"] = activity.HardwareAddress
	}

	return h.writePoint(influxdb2.NewPoint("activity",
		map[string]string{
			"subscriber": subscriberID,
			"event":      string(activity.EventType),
			"username":   activity.Username,
		},
		fields,
		h.clock.Now()))
}

// HandleThroughput stores the throughput sample in influxDB.
func (h *DataHandler) HandleThroughput(
	subscriberID string,
	target string,
	sample moncore.ThroughputSample,
) error {
	return h.writePoint(influxdb2.NewPoint("throughput",
		map[string]string{
			"subscriber": subscriberID,
			"target":     target,
		},
		map[string]any{
			"download_mbps": sample.DownloadMbps,
			"upload_mbps":   sample.UploadMbps,
			"interval_s":    sample.IntervalSeconds,
		},
		sample.MeasuredAt))
}

// Close stops writing data to the DB.
func (h *DataHandler) Close() error {
	h.dbClient.Close()

	return nil
}

func (h *DataHandler) writePoint(point *write.Point) error {
	ctx, cancel := context.WithTimeout(h.ctx, h.timeout)
	defer cancel()

	if err := h.writeClient.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("influxdb-data-handler: failed to write to DB: %w", err)
	}

	return nil
}
