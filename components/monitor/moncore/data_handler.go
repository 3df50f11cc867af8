package moncore

// DataHandler receives data derived by the monitoring sessions.
//
// Remarks:
//   - Implementation should be thread-safe.
type DataHandler interface {
	// HandleActivity is called for each delivered user activity.
	HandleActivity(subscriberID string, activity ActivityRecord) error

	// HandleThroughput is called for each computed throughput sample.
	HandleThroughput(subscriberID string, target string, sample ThroughputSample) error
}

// NoopDataHandler ignores all data.
type NoopDataHandler struct{}

// HandleActivity is non-operational.
func (NoopDataHandler) HandleActivity(_ string, _ ActivityRecord) error {
	return nil
}

// HandleThroughput is non-operational.
func (NoopDataHandler) HandleThroughput(_ string, _ string, _ ThroughputSample) error {
	return nil
}
