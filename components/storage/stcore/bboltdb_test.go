package stcore

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/open-control-systems/netwatch/components/status"
)

func TestBboltDBBucketReadWrite(t *testing.T) {
	db, err := NewBboltDB(filepath.Join(t.TempDir(), "bolt.db"), nil)
	require.Nil(t, err)
	defer db.Close()

	bucket := NewBboltDBBucket(db, "telegram")

	blob, err := bucket.Read("offset")
	require.True(t, errors.Is(err, status.StatusNoData))
	require.Nil(t, blob.Data)

	require.Nil(t, bucket.Write("offset", Blob{Data: []byte("42")}))

	blob, err = bucket.Read("offset")
	require.Nil(t, err)
	require.Equal(t, "42", string(blob.Data))

	require.Nil(t, bucket.Write("offset", Blob{Data: []byte("43")}))

	blob, err = bucket.Read("offset")
	require.Nil(t, err)
	require.Equal(t, "43", string(blob.Data))
}

func TestBboltDBBucketRemove(t *testing.T) {
	db, err := NewBboltDB(filepath.Join(t.TempDir(), "bolt.db"), nil)
	require.Nil(t, err)
	defer db.Close()

	bucket := NewBboltDBBucket(db, "telegram")

	require.Nil(t, bucket.Remove("offset"))
	require.Nil(t, bucket.Write("offset", Blob{Data: []byte("1")}))
	require.Nil(t, bucket.Remove("offset"))

	_, err = bucket.Read("offset")
	require.True(t, errors.Is(err, status.StatusNoData))
}

func TestBboltDBPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bolt.db")

	db, err := NewBboltDB(path, nil)
	require.Nil(t, err)

	require.Nil(t, NewBboltDBBucket(db, "telegram").Write("offset", Blob{Data: []byte("7")}))
	require.Nil(t, db.Close())

	db, err = NewBboltDB(path, nil)
	require.Nil(t, err)
	defer db.Close()

	blob, err := NewBboltDBBucket(db, "telegram").Read("offset")
	require.Nil(t, err)
	require.Equal(t, "7", string(blob.Data))
}

func TestBboltDBLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bolt.db")

	db, err := NewBboltDB(path, nil)
	require.Nil(t, err)
	defer db.Close()

	_, err = NewBboltDB(path, &bbolt.Options{Timeout: time.Millisecond * 50})
	require.NotNil(t, err)
}

func TestNoopDB(t *testing.T) {
	var db NoopDB

	_, err := db.Read("offset")
	require.Equal(t, status.StatusNoData, err)
	require.Nil(t, db.Write("offset", Blob{}))
	require.Nil(t, db.Remove("offset"))
	require.Nil(t, db.Close())
}
