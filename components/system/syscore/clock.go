package syscore

import "time"

// MonotonicClock to read monotonic time.
type MonotonicClock interface {
	// Now returns a monotonic clock reading.
	Now() time.Time
}

// LocalMonotonicClock is wrapper around standard time.Time package.
type LocalMonotonicClock struct{}

// Now returns the current local time.
func (*LocalMonotonicClock) Now() time.Time {
	return time.Now()
}
