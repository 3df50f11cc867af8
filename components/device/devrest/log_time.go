package devrest

import (
	"strings"
	"time"
)

// RouterOS reports today's records without a date and older records without a year.
var logTimeLayouts = []struct {
	layout  string
	hasDate bool
	hasYear bool
}{
	{layout: "2006-01-02 15:04:05", hasDate: true, hasYear: true},
	{layout: "Jan/02/2006 15:04:05", hasDate: true, hasYear: true},
	{layout: "Jan/02 15:04:05", hasDate: true},
	{layout: "01-02 15:04:05", hasDate: true},
	{layout: "15:04:05"},
}

// parseLogTime converts the device log timestamp to time.Time.
//
// Parameters:
//   - value - timestamp reported by the device.
//   - now - current time, missing date or year are taken from it.
func parseLogTime(value string, now time.Time) (time.Time, bool) {
	value = strings.TrimSpace(value)

	for _, l := range logTimeLayouts {
		ts, err := time.ParseInLocation(l.layout, value, now.Location())
		if err != nil {
			continue
		}

		switch {
		case l.hasYear:
			return ts, true

		case l.hasDate:
			ts = time.Date(now.Year(), ts.Month(), ts.Day(),
				ts.Hour(), ts.Minute(), ts.Second(), 0, now.Location())

			// Records from the end of the previous year.
			if ts.After(now.Add(time.Hour * 24)) {
				ts = ts.AddDate(-1, 0, 0)
			}

			return ts, true

		default:
			return time.Date(now.Year(), now.Month(), now.Day(),
				ts.Hour(), ts.Minute(), ts.Second(), 0, now.Location()), true
		}
	}

	return time.Time{}, false
}
