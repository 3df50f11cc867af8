package stcore

// Blob is an opaque piece of data stored in the DB.
type Blob struct {
	Data []byte
}
