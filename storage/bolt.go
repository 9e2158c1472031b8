package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"contentengine/models"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

// BoltStore keeps drafts and profiles in a local bbolt file
type BoltStore struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewBoltStore creates a store over an initialized database (see InitDB)
func NewBoltStore(db *bbolt.DB) *BoltStore {
	return &BoltStore{db: db, now: time.Now}
}

// Open returns the view of the store owned by userID. The token is not needed locally.
func (s *BoltStore) Open(_ string, userID string) Store {
	return &boltScope{store: s, userID: userID}
}

type boltScope struct {
	store  *BoltStore
	userID string
}

// draftKey is "<user id>/<draft id>" so a user's drafts share a cursor prefix
func (b *boltScope) draftKey(draftID string) []byte {
	return []byte(b.userID + "/" + draftID)
}

func (b *boltScope) InsertDraft(_ context.Context, nd models.NewDraft) (*models.Draft, error) {
	if nd.UserID != b.userID {
		return nil, ErrForbidden
	}

	now := timestamp(b.store.now())
	draft := &models.Draft{
		DraftID:     uuid.NewString(),
		UserID:      b.userID,
		ContentType: nd.ContentType,
		ContentText: nd.ContentText,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := b.store.db.Update(func(tx *bbolt.Tx) error {
		return putJSON(tx.Bucket([]byte(draftBucket)), b.draftKey(draft.DraftID), draft)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert draft: %w", err)
	}
	return draft, nil
}

func (b *boltScope) GetDraft(_ context.Context, draftID string) (*models.Draft, error) {
	var draft models.Draft
	err := b.store.db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx.Bucket([]byte(draftBucket)), b.draftKey(draftID), &draft)
	})
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (b *boltScope) UpdateDraft(_ context.Context, draftID string, upd models.DraftUpdate) (*models.Draft, error) {
	var draft models.Draft
	err := b.store.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(draftBucket))
		key := b.draftKey(draftID)
		if err := getJSON(bucket, key, &draft); err != nil {
			return err
		}

		if upd.IfUpdatedAt != nil && !timestamp(*upd.IfUpdatedAt).Equal(draft.UpdatedAt) {
			return ErrConflict
		}
		if upd.ContentType != nil {
			draft.ContentType = *upd.ContentType
		}
		if upd.ContentText != nil {
			draft.ContentText = *upd.ContentText
		}
		draft.UpdatedAt = nextUpdatedAt(b.store.now(), draft.UpdatedAt)

		return putJSON(bucket, key, &draft)
	})
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (b *boltScope) ListDrafts(_ context.Context, q models.DraftQuery) ([]models.Draft, error) {
	drafts := []models.Draft{}
	prefix := []byte(b.userID + "/")

	err := b.store.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(draftBucket)).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var d models.Draft
			if err := json.Unmarshal(v, &d); err != nil {
				return fmt.Errorf("failed to decode draft %s: %w", k, err)
			}
			drafts = append(drafts, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(drafts, func(i, j int) bool {
		x, y := drafts[i], drafts[j]
		if q.Order == models.OrderRecent && !x.UpdatedAt.Equal(y.UpdatedAt) {
			return x.UpdatedAt.After(y.UpdatedAt)
		}
		return x.CreatedAt.After(y.CreatedAt)
	})

	if q.Limit > 0 && len(drafts) > q.Limit {
		drafts = drafts[:q.Limit]
	}
	return drafts, nil
}

func (b *boltScope) GetProfile(_ context.Context) (*models.Profile, error) {
	var profile models.Profile
	err := b.store.db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx.Bucket([]byte(profileBucket)), []byte(b.userID), &profile)
	})
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (b *boltScope) UpsertProfile(_ context.Context, in models.ProfileInput) (*models.Profile, error) {
	profile := &models.Profile{
		UserID:         b.userID,
		BrandTone:      in.BrandTone,
		Industry:       in.Industry,
		ProductList:    in.ProductList,
		TargetAudience: in.TargetAudience,
		UpdatedAt:      timestamp(b.store.now()),
	}

	err := b.store.db.Update(func(tx *bbolt.Tx) error {
		return putJSON(tx.Bucket([]byte(profileBucket)), []byte(b.userID), profile)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return profile, nil
}

func putJSON(bucket *bbolt.Bucket, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return bucket.Put(key, data)
}

func getJSON(bucket *bbolt.Bucket, key []byte, v interface{}) error {
	data := bucket.Get(key)
	if data == nil {
		return ErrNotFound
	}
	return json.Unmarshal(data, v)
}
