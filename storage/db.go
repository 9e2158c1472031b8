package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	draftBucket     = "drafts"
	profileBucket   = "profiles"
	userBucket      = "users"
	userEmailBucket = "user_emails"
	metaBucket      = "meta"
)

// SchemaVersion is bumped whenever the bucket layout or value encoding changes
const SchemaVersion uint64 = 1

var schemaKey = []byte("schema_version")

// DBFile is the database file name inside the data directory
const DBFile = "contentengine.db"

// InitDB opens (creating if needed) the database under dataDir and makes sure every
// bucket exists. A file written by a newer schema is refused.
func InitDB(dataDir string) (*bbolt.DB, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(dataDir, DBFile), 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Update(migrate); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(tx *bbolt.Tx) error {
	for _, name := range []string{draftBucket, profileBucket, userBucket, userEmailBucket, metaBucket} {
		if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
			return fmt.Errorf("create bucket %s: %w", name, err)
		}
	}

	meta := tx.Bucket([]byte(metaBucket))
	if raw := meta.Get(schemaKey); len(raw) == 8 {
		if v := binary.BigEndian.Uint64(raw); v > SchemaVersion {
			return fmt.Errorf("database schema %d is newer than supported %d", v, SchemaVersion)
		}
	}

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], SchemaVersion)
	return meta.Put(schemaKey, buf[:])
}
