package stcore

import "github.com/open-control-systems/netwatch/components/status"

// NoopDB forgets everything, used when the state storage isn't configured.
type NoopDB struct{}

// Read always reports a missing key.
func (*NoopDB) Read(_ string) (Blob, error) {
	return Blob{}, status.StatusNoData
}

// Write drops the blob.
func (*NoopDB) Write(_ string, _ Blob) error {
	return nil
}

// Remove does nothing.
func (*NoopDB) Remove(_ string) error {
	return nil
}

// Close does nothing.
func (*NoopDB) Close() error {
	return nil
}
