package stcore

// DB keeps the hub state that should survive restarts, e.g. the Telegram update offset.
//
// Remarks:
//   - Implementation should be thread-safe.
//   - Monitoring sessions are never stored, they are lost on restart.
type DB interface {
	// Read returns the blob stored under the key.
	//
	// Remarks:
	//  - status.StatusNoData is returned if the key doesn't exist.
	Read(key string) (Blob, error)

	// Write stores the blob under the key, replacing the previous one.
	Write(key string, blob Blob) error

	// Remove deletes the key, it's not an error if the key doesn't exist.
	Remove(key string) error

	// Close releases all resources for the database.
	Close() error
}
