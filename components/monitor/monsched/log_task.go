package monsched

import (
	"github.com/open-control-systems/netwatch/components/core"
	"github.com/open-control-systems/netwatch/components/device/devcore"
	"github.com/open-control-systems/netwatch/components/monitor/moncore"
)

type logTask struct {
	tick
}

// Run polls the device log and delivers new user activities in the query order.
func (t *logTask) Run() error {
	if !t.isActive() {
		return nil
	}

	now := t.clock.Now()

	ctx, cancel := t.queryContext()
	records, err := t.service.QueryLogs(ctx, devcore.LogFilter{
		Since: t.session.LastPollTime(),
		Limit: t.params.LogLimit,
	})
	cancel()

	if err != nil {
		return t.failQuery(err)
	}

	t.session.RecordPoll(now)

	dedup := t.session.Deduplicator()
	opts := t.session.Options()

	for _, record := range records {
		signature := moncore.SignatureOf(record)
		if dedup.Seen(signature) {
			continue
		}

		dedup.Remember(signature)

		activity := moncore.Classify(record)
		if !moncore.IsDeliverable(activity, opts) {
			continue
		}

		if err := t.handler.HandleActivity(t.session.Key().SubscriberID, activity); err != nil {
			core.LogErr.Printf("monitor-scheduler: failed to handle activity: key=%s err=%v\n",
				t.session.Key(), err)
		}

		if !t.isActive() {
			continue
		}

		if err := t.deliver(Message{
			Kind: moncore.KindLogActivity,
			Text: FormatActivity(activity),
			Stop: true,
		}); err != nil {
			t.HandleError(err)
		}
	}

	return nil
}
