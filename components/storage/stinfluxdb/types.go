package stinfluxdb

import "time"

// DBParams provides various configuration options for influxDB.
type DBParams struct {
	// URL - influxDB server URL, e.g. http://localhost:8086.
	URL string

	// Org and Bucket the points are written to.
	Org    string
	Bucket string

	// Token - API token with the write permission for Bucket.
	Token string

	// WriteTimeout - how long to wait for a single point write, 5 seconds if zero.
	WriteTimeout time.Duration
}
