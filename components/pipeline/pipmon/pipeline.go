package pipmon

import (
	"context"
	"fmt"
	"time"

	"github.com/open-control-systems/netwatch/components/core"
	"github.com/open-control-systems/netwatch/components/device/devrest"
	"github.com/open-control-systems/netwatch/components/monitor/moncore"
	"github.com/open-control-systems/netwatch/components/monitor/monsched"
	"github.com/open-control-systems/netwatch/components/monitor/monstore"
	"github.com/open-control-systems/netwatch/components/status"
	"github.com/open-control-systems/netwatch/components/system/syscore"
)

// PipelineParams represents various options for the monitoring pipeline.
type PipelineParams struct {
	Device    devrest.QueryServiceParams
	MDNS      MDNSParams
	Scheduler monsched.Params

	// DedupCapacity - maximum number of remembered log signatures per session.
	DedupCapacity int

	// MinInterval - shortest accepted polling period, 1s is used if zero.
	MinInterval time.Duration
}

// Pipeline connects the device, the session registry and the poll scheduler.
type Pipeline struct {
	service   *devrest.QueryService
	scheduler *monsched.Scheduler
}

// NewPipeline initializes the monitoring pipeline.
//
// Parameters:
//   - ctx - parent context, the sessions are stopped when it's cancelled.
//   - closer - to register all resources that should be closed.
//   - clock to measure the poll time.
//   - sink to deliver notifications.
//   - handler to export the derived data, can be nil.
//   - params - various pipeline options.
//
// Remarks:
//   - The final notifications are still delivered after ctx is cancelled,
//     they are bounded by the scheduler send timeout.
func NewPipeline(
	ctx context.Context,
	closer *core.FanoutCloser,
	clock syscore.MonotonicClock,
	sink monsched.Sink,
	handler moncore.DataHandler,
	params PipelineParams,
) (*Pipeline, error) {
	if params.DedupCapacity > 0 && params.DedupCapacity < params.Scheduler.LogLimit {
		return nil, fmt.Errorf("monitor-pipeline: dedup capacity=%d is less than log limit=%d: %w",
			params.DedupCapacity, params.Scheduler.LogLimit, status.StatusInvalidArg)
	}

	service, err := NewQueryService(ctx, closer, clock, params.Device, params.MDNS)
	if err != nil {
		return nil, err
	}

	if params.MinInterval <= 0 {
		params.MinInterval = time.Second
	}

	if params.Scheduler.QueryTimeout == 0 {
		params.Scheduler.QueryTimeout = params.Device.Timeout
	}

	registry := monstore.NewRegistry(ctx, clock, monstore.RegistryParams{
		DedupCapacity: params.DedupCapacity,
		MinInterval:   params.MinInterval,
	})

	ioCtx, ioCancel := context.WithCancel(context.WithoutCancel(ctx))

	scheduler := monsched.NewScheduler(ioCtx, registry, service, sink, handler, clock,
		params.Scheduler)

	closer.Add("monitor-scheduler", core.FuncCloser(func() error {
		defer ioCancel()

		return scheduler.Close()
	}))

	core.LogInf.Printf("monitor-pipeline: started: device=%s\n", params.Device.BaseURL)

	return &Pipeline{
		service:   service,
		scheduler: scheduler,
	}, nil
}

// GetScheduler returns the component to control the monitoring sessions.
func (p *Pipeline) GetScheduler() *monsched.Scheduler {
	return p.scheduler
}

// GetQueryService returns the component to query the device directly.
func (p *Pipeline) GetQueryService() *devrest.QueryService {
	return p.service
}
