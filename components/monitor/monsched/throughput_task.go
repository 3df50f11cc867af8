package monsched

import (
	"errors"
	"fmt"

	"github.com/open-control-systems/netwatch/components/core"
	"github.com/open-control-systems/netwatch/components/device/devcore"
	"github.com/open-control-systems/netwatch/components/monitor/moncore"
)

type throughputTask struct {
	tick
}

// Run samples the interface counters and delivers the current throughput.
func (t *throughputTask) Run() error {
	if !t.isActive() {
		return nil
	}

	target := t.session.Target()
	now := t.clock.Now()

	ctx, cancel := t.queryContext()
	counters, err := t.service.QueryCounters(ctx, target)
	cancel()

	if err != nil {
		if errors.Is(err, devcore.ErrNotFound) {
			t.session.Stop(fmt.Sprintf("interface %s no longer exists", target))

			return err
		}

		return t.failQuery(err)
	}

	t.session.RecordPoll(now)

	var sample moncore.ThroughputSample

	if prev, prevTime, ok := t.session.LastCounters(); ok {
		sample = moncore.NewThroughputSample(prev, counters, now.Sub(prevTime), now)
	} else {
		sample = moncore.ThroughputSample{MeasuredAt: now}
	}

	t.session.SetLastCounters(counters, now)
	t.session.SetLastSample(sample)

	if err := t.handler.HandleThroughput(t.session.Key().SubscriberID, target, sample); err != nil {
		core.LogErr.Printf("monitor-scheduler: failed to handle throughput: key=%s err=%v\n",
			t.session.Key(), err)
	}

	if !t.isActive() {
		return nil
	}

	return t.deliver(Message{
		Kind:    moncore.KindThroughput,
		Text:    FormatThroughput(target, sample),
		Stop:    true,
		Replace: true,
	})
}
