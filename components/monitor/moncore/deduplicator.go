package moncore

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/open-control-systems/netwatch/components/device/devcore"
)

// DefaultDedupCapacity is a number of remembered signatures if no capacity is configured.
const DefaultDedupCapacity = 1024

// SignatureOf returns the content signature of the log record.
func SignatureOf(record devcore.LogRecord) string {
	hash := sha256.New()
	hash.Write([]byte(record.Time))
	hash.Write([]byte{0})
	hash.Write([]byte(record.Message))

	return hex.EncodeToString(hash.Sum(nil))
}

// Deduplicator remembers signatures of already processed log records.
//
// Remarks:
//   - The least recently seen signatures are evicted when the capacity is reached.
//   - Thread-safe.
type Deduplicator struct {
	cache *lru.Cache[string, struct{}]
}

// NewDeduplicator is an initialization of Deduplicator.
//
// Parameters:
//   - capacity - maximum number of remembered signatures,
//     DefaultDedupCapacity is used if not positive.
func NewDeduplicator(capacity int) *Deduplicator {
	if capacity <= 0 {
		capacity = DefaultDedupCapacity
	}

	cache, err := lru.New[string, struct{}](capacity)
	if err != nil {
		panic("moncore: failed to create LRU cache: " + err.Error())
	}

	return &Deduplicator{
		cache: cache,
	}
}

// Seen returns true if the signature was remembered before.
//
// Remarks:
//   - A seen signature is marked as recently used.
func (d *Deduplicator) Seen(signature string) bool {
	_, ok := d.cache.Get(signature)

	return ok
}

// Remember stores the signature.
func (d *Deduplicator) Remember(signature string) {
	d.cache.Add(signature, struct{}{})
}

// Len returns the number of remembered signatures.
func (d *Deduplicator) Len() int {
	return d.cache.Len()
}
