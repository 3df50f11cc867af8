package monsched

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/open-control-systems/netwatch/components/core"
	"github.com/open-control-systems/netwatch/components/device/devcore"
	"github.com/open-control-systems/netwatch/components/monitor/moncore"
	"github.com/open-control-systems/netwatch/components/monitor/monstore"
	"github.com/open-control-systems/netwatch/components/status"
	"github.com/open-control-systems/netwatch/components/system/syscore"
	"github.com/open-control-systems/netwatch/components/system/syssched"
)

// Params represents various options for Scheduler.
type Params struct {
	// LogInterval - default polling period of the log monitoring.
	LogInterval time.Duration

	// ThroughputInterval - default polling period of the throughput monitoring.
	ThroughputInterval time.Duration

	// FailureThreshold - number of consecutive failures after which the session is stopped.
	FailureThreshold int

	// LogLimit - maximum number of log records requested per tick, 0 means no limit.
	LogLimit int

	// QueryTimeout - how long to wait for the device response.
	QueryTimeout time.Duration

	// SendTimeout - how long to wait for the notification delivery.
	SendTimeout time.Duration
}

// Scheduler drives the periodic ticks of the monitoring sessions.
type Scheduler struct {
	ctx      context.Context
	registry *monstore.Registry
	service  devcore.QueryService
	sink     Sink
	handler  moncore.DataHandler
	clock    syscore.MonotonicClock
	params   Params

	wg sync.WaitGroup
}

// NewScheduler is an initialization of Scheduler.
//
// Parameters:
//   - ctx is used for the device queries and notifications, it should outlive Close().
//   - registry to own the sessions.
//   - service to query the device state.
//   - sink to deliver notifications.
//   - handler to export the derived data, can be nil.
//   - clock to measure the poll time.
//   - params - various scheduler options.
func NewScheduler(
	ctx context.Context,
	registry *monstore.Registry,
	service devcore.QueryService,
	sink Sink,
	handler moncore.DataHandler,
	clock syscore.MonotonicClock,
	params Params,
) *Scheduler {
	if handler == nil {
		handler = moncore.NoopDataHandler{}
	}
	if params.FailureThreshold <= 0 {
		params.FailureThreshold = 3
	}
	if params.LogInterval <= 0 {
		params.LogInterval = time.Second * 3
	}
	if params.ThroughputInterval <= 0 {
		params.ThroughputInterval = time.Second * 3
	}
	if params.QueryTimeout <= 0 {
		params.QueryTimeout = time.Second * 10
	}
	if params.SendTimeout <= 0 {
		params.SendTimeout = time.Second * 10
	}

	return &Scheduler{
		ctx:      ctx,
		registry: registry,
		service:  service,
		sink:     sink,
		handler:  handler,
		clock:    clock,
		params:   params,
	}
}

// StartLogMonitoring starts watching the device log for the subscriber.
//
// Remarks:
//   - Default interval is used if opts.Interval is zero.
//   - monstore.ErrAlreadyActive is returned if the log monitoring is already active.
func (s *Scheduler) StartLogMonitoring(
	subscriberID string,
	opts moncore.Options,
) (moncore.Snapshot, error) {
	if opts.Interval == 0 {
		opts.Interval = s.params.LogInterval
	}

	key := moncore.Key{SubscriberID: subscriberID, Kind: moncore.KindLogActivity}

	session, err := s.registry.Start(key, "", opts)
	if err != nil {
		return moncore.Snapshot{}, err
	}

	task := &logTask{tick: s.makeTick(session)}

	if err := s.run(session, task, &task.tick); err != nil {
		return moncore.Snapshot{}, err
	}

	return session.Snapshot(), nil
}

// StartThroughputMonitoring starts watching the interface throughput for the subscriber.
//
// Remarks:
//   - Default interval is used if interval is zero.
//   - devcore.ErrNotFound is returned if the interface doesn't exist.
//   - monstore.ErrAlreadyActive is returned if the throughput monitoring is already active.
func (s *Scheduler) StartThroughputMonitoring(
	subscriberID string,
	target string,
	interval time.Duration,
) (moncore.Snapshot, error) {
	if interval == 0 {
		interval = s.params.ThroughputInterval
	}

	if target == "" {
		return moncore.Snapshot{}, fmt.Errorf("monitor-scheduler: empty target: %w",
			status.StatusInvalidArg)
	}

	key := moncore.Key{SubscriberID: subscriberID, Kind: moncore.KindThroughput}

	if s.registry.IsActive(key) {
		return moncore.Snapshot{}, monstore.ErrAlreadyActive
	}

	now := s.clock.Now()

	ctx, cancel := context.WithTimeout(s.ctx, s.params.QueryTimeout)
	counters, err := s.service.QueryCounters(ctx, target)
	cancel()

	if err != nil {
		return moncore.Snapshot{}, err
	}

	session, err := s.registry.Start(key, target, moncore.Options{Interval: interval})
	if err != nil {
		return moncore.Snapshot{}, err
	}

	session.SetLastCounters(counters, now)

	task := &throughputTask{tick: s.makeTick(session)}

	if err := s.run(session, task, &task.tick); err != nil {
		return moncore.Snapshot{}, err
	}

	return session.Snapshot(), nil
}

// StopMonitoring asks the session to stop.
//
// Remarks:
//   - The final notification is sent asynchronously once the in-flight tick completes.
//   - monstore.ErrNotActive is returned if there is no active session.
func (s *Scheduler) StopMonitoring(subscriberID string, kind moncore.Kind) error {
	return s.registry.Stop(
		moncore.Key{SubscriberID: subscriberID, Kind: kind}, "stopped by subscriber")
}

// GetStatus returns the session snapshot.
func (s *Scheduler) GetStatus(subscriberID string, kind moncore.Kind) (moncore.Snapshot, bool) {
	return s.registry.Status(moncore.Key{SubscriberID: subscriberID, Kind: kind})
}

// QueryInterfaces returns interfaces available for the throughput monitoring.
func (s *Scheduler) QueryInterfaces(ctx context.Context) ([]devcore.Counters, error) {
	ctx, cancel := context.WithTimeout(ctx, s.params.QueryTimeout)
	defer cancel()

	return s.service.QueryInterfaces(ctx)
}

// Close stops all sessions and waits until they are released.
func (s *Scheduler) Close() error {
	s.registry.StopAll("service shutdown")
	s.wg.Wait()

	return nil
}

func (s *Scheduler) makeTick(session *moncore.Session) tick {
	return tick{
		ctx:     s.ctx,
		session: session,
		service: s.service,
		sink:    s.sink,
		handler: s.handler,
		clock:   s.clock,
		params:  s.params,
	}
}

func (s *Scheduler) run(
	session *moncore.Session,
	task syssched.Task,
	handler syssched.ErrorHandler,
) error {
	s.notify(session, Message{
		Kind: session.Key().Kind,
		Text: FormatStarted(session.Snapshot()),
		Stop: true,
	})

	runner := syssched.NewAsyncTaskRunner(session.Context(), task, handler,
		syssched.AsyncTaskRunnerParams{
			UpdateInterval: session.Options().Interval,
		})

	if err := runner.Start(); err != nil {
		session.Stop(fmt.Sprintf("failed to start: %v", err))
		session.MarkStopped()
		s.registry.Remove(session)

		return err
	}

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		<-runner.Done()
		s.finalize(session)
	}()

	return nil
}

func (s *Scheduler) finalize(session *moncore.Session) {
	// The parent context was cancelled without an explicit stop.
	session.Stop("service shutdown")

	snapshot := session.Snapshot()

	s.notify(session, Message{
		Kind:    snapshot.Kind,
		Text:    FormatStopped(snapshot),
		Replace: snapshot.Kind == moncore.KindThroughput,
	})

	session.MarkStopped()
	s.registry.Remove(session)

	core.LogInf.Printf("monitor-scheduler: session stopped: key=%s polls=%d delivered=%d reason=%s\n",
		session.Key(), snapshot.PollCount, snapshot.DeliveredCount, snapshot.StopReason)
}

// notify delivers the message, errors are logged and swallowed.
func (s *Scheduler) notify(session *moncore.Session, msg Message) {
	ctx, cancel := context.WithTimeout(s.ctx, s.params.SendTimeout)
	defer cancel()

	msg.SessionID = session.ID()

	if err := s.sink.Send(ctx, session.Key().SubscriberID, msg); err != nil {
		core.LogErr.Printf("monitor-scheduler: failed to notify: key=%s err=%v\n",
			session.Key(), err)
	}
}
