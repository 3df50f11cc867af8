package stcore

import (
	"time"

	"go.etcd.io/bbolt"

	"github.com/open-control-systems/netwatch/components/status"
)

// NewBboltDB opens the bbolt database file.
//
// Parameters:
//   - dbPath - database file path, if it doesn't exist then it will be created automatically.
//   - opts - bbolt options, nil means defaults with a 1 second lock timeout.
//
// Remarks:
//   - bbolt locks the file exclusively, a second instance fails instead of waiting forever.
//
// References:
//   - https://github.com/etcd-io/bbolt
func NewBboltDB(dbPath string, opts *bbolt.Options) (*bbolt.DB, error) {
	if opts == nil {
		opts = &bbolt.Options{Timeout: time.Second}
	}

	return bbolt.Open(dbPath, 0o600, opts)
}

// BboltDBBucket stores the blobs in a single bbolt bucket.
type BboltDBBucket struct {
	db     *bbolt.DB
	bucket []byte
}

// NewBboltDBBucket is an initialization of BboltDBBucket.
//
// Parameters:
//   - db - bbolt database instance, owned by the caller.
//   - bucket - bucket name, created on the first write.
func NewBboltDBBucket(db *bbolt.DB, bucket string) *BboltDBBucket {
	return &BboltDBBucket{
		db:     db,
		bucket: []byte(bucket),
	}
}

// Read returns the blob stored under the key.
func (b *BboltDBBucket) Read(key string) (Blob, error) {
	var blob Blob

	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		if bucket == nil {
			return status.StatusNoData
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return status.StatusNoData
		}

		// Data returned by bbolt is only valid within the transaction.
		blob.Data = append([]byte(nil), data...)

		return nil
	})
	if err != nil {
		return Blob{}, err
	}

	return blob, nil
}

// Write stores the blob under the key.
func (b *BboltDBBucket) Write(key string, blob Blob) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(b.bucket)
		if err != nil {
			return err
		}

		return bucket.Put([]byte(key), blob.Data)
	})
}

// Remove deletes the key.
func (b *BboltDBBucket) Remove(key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		if bucket == nil {
			return nil
		}

		return bucket.Delete([]byte(key))
	})
}

// Close does nothing, the database is closed by its owner.
func (*BboltDBBucket) Close() error {
	return nil
}
