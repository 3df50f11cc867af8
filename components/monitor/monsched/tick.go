package monsched

import (
	"context"
	"fmt"

	"github.com/open-control-systems/netwatch/components/core"
	"github.com/open-control-systems/netwatch/components/device/devcore"
	"github.com/open-control-systems/netwatch/components/monitor/moncore"
	"github.com/open-control-systems/netwatch/components/system/syscore"
)

// tick contains the state shared by the log and throughput tasks.
//
// Remarks:
//   - Ticks of the same session never overlap, so the failure counters need no locking.
type tick struct {
	ctx     context.Context
	session *moncore.Session
	service devcore.QueryService
	sink    Sink
	handler moncore.DataHandler
	clock   syscore.MonotonicClock
	params  Params

	deliveryFailures int
}

// HandleError logs errors returned by the tick.
func (t *tick) HandleError(err error) {
	core.LogErr.Printf("monitor-scheduler: tick failed: key=%s err=%v\n", t.session.Key(), err)
}

func (t *tick) queryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(t.ctx, t.params.QueryTimeout)
}

func (t *tick) failQuery(err error) error {
	failures := t.session.RecordFailure()

	if failures >= t.params.FailureThreshold {
		t.session.Stop(fmt.Sprintf("device query failed %d times in a row: %v", failures, err))
	}

	return fmt.Errorf("query failed: failures=%d: %w", failures, err)
}

func (t *tick) deliver(msg Message) error {
	ctx, cancel := context.WithTimeout(t.ctx, t.params.SendTimeout)
	defer cancel()

	msg.SessionID = t.session.ID()

	if err := t.sink.Send(ctx, t.session.Key().SubscriberID, msg); err != nil {
		t.deliveryFailures++

		if t.deliveryFailures >= t.params.FailureThreshold {
			t.session.Stop(fmt.Sprintf("notification delivery failed %d times in a row: %v",
				t.deliveryFailures, err))
		}

		return fmt.Errorf("delivery failed: failures=%d: %w", t.deliveryFailures, err)
	}

	t.deliveryFailures = 0
	t.session.RecordDelivery()

	return nil
}

func (t *tick) isActive() bool {
	return t.session.Status() == moncore.StatusActive
}
