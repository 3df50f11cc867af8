package core

import "errors"

// FanoutCloser propagates close call to the registered closers.
//
// Remarks:
//   - Closers are closed in the reverse order of registration, so resources
//     that depend on earlier ones are released first.
type FanoutCloser struct {
	closers []closerNode
}

// Add registers closer with id to be closed on Close() call.
func (c *FanoutCloser) Add(id string, closer Closer) {
	c.closers = append(c.closers, closerNode{id: id, closer: closer})
}

// Close closes all registered closers and returns the joined errors.
func (c *FanoutCloser) Close() error {
	var errs []error

	for i := len(c.closers) - 1; i >= 0; i-- {
		node := c.closers[i]

		if err := node.closer.Close(); err != nil {
			LogErr.Printf("fanout-closer: failed to close: id=%s err=%v\n", node.id, err)

			errs = append(errs, err)
		}
	}

	c.closers = nil

	return errors.Join(errs...)
}

type closerNode struct {
	id     string
	closer Closer
}
