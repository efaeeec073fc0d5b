// Package bbolt persists corpus snapshots in bbolt (embedded B+ tree).
// Each profile gets its own top-level bucket. Within it, one sub-bucket per
// item kind holds JSON records keyed by position, plus a "meta" bucket.
// SaveCorpus replaces a profile's records in a single transaction, so a
// crash mid-write leaves the previous snapshot intact.
package bbolt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/corey/seek/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// Bucket keys
var (
	bucketMeta = []byte("meta")
	keySavedAt = []byte("saved_at")
)

// DefaultProfile is the profile used when none is configured.
const DefaultProfile = "default"

// Store implements ports.CorpusProvider and ports.CorpusWriter backed by bbolt.
type Store struct {
	db      *bolt.DB
	profile []byte
}

// NewStore opens (or creates) a bbolt database at path, scoped to profile.
func NewStore(path, profile string) (*Store, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db, profile: []byte(profile)}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveCorpus replaces the profile's snapshot with corpus.
func (s *Store) SaveCorpus(corpus *ports.Corpus) error {
	if corpus == nil {
		return errors.New("nil corpus")
	}

	encoded := make(map[ports.Kind][][]byte, len(ports.ItemKinds))
	var err error
	if encoded[ports.KindTab], err = encodeRecords(corpus.Tabs); err != nil {
		return fmt.Errorf("tabs: %w", err)
	}
	if encoded[ports.KindBookmark], err = encodeRecords(corpus.Bookmarks); err != nil {
		return fmt.Errorf("bookmarks: %w", err)
	}
	if encoded[ports.KindHistory], err = encodeRecords(corpus.History); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if encoded[ports.KindDownload], err = encodeRecords(corpus.Downloads); err != nil {
		return fmt.Errorf("downloads: %w", err)
	}
	if encoded[ports.KindTopSite], err = encodeRecords(corpus.TopSites); err != nil {
		return fmt.Errorf("top sites: %w", err)
	}

	savedAt, err := time.Now().UTC().MarshalText()
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(s.profile); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		prof, err := tx.CreateBucket(s.profile)
		if err != nil {
			return err
		}
		for _, kind := range ports.ItemKinds {
			kb, err := prof.CreateBucket([]byte(kind))
			if err != nil {
				return err
			}
			for i, v := range encoded[kind] {
				if err := kb.Put(seqKey(i), v); err != nil {
					return err
				}
			}
		}
		mb, err := prof.CreateBucket(bucketMeta)
		if err != nil {
			return err
		}
		return mb.Put(keySavedAt, savedAt)
	})
}

// SavedAt reports when the profile was last saved. Zero when never saved.
func (s *Store) SavedAt() (time.Time, error) {
	var t time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		prof := tx.Bucket(s.profile)
		if prof == nil {
			return nil
		}
		mb := prof.Bucket(bucketMeta)
		if mb == nil {
			return nil
		}
		if v := mb.Get(keySavedAt); v != nil {
			return t.UnmarshalText(v)
		}
		return nil
	})
	return t, err
}

// loadKind reads up to limit records of one kind in stored order.
// limit <= 0 reads all. A missing profile or bucket yields no records.
func loadKind[T any](ctx context.Context, s *Store, kind ports.Kind, limit int) ([]T, error) {
	var out []T
	err := s.db.View(func(tx *bolt.Tx) error {
		prof := tx.Bucket(s.profile)
		if prof == nil {
			return nil
		}
		kb := prof.Bucket([]byte(kind))
		if kb == nil {
			return nil
		}
		c := kb.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if limit > 0 && len(out) >= limit {
				break
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := decodeRecord[T](k, v)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	return out, nil
}

// Tabs returns the stored tabs.
func (s *Store) Tabs(ctx context.Context) ([]ports.TabRecord, error) {
	return loadKind[ports.TabRecord](ctx, s, ports.KindTab, 0)
}

// Bookmarks returns the stored bookmarks.
func (s *Store) Bookmarks(ctx context.Context) ([]ports.BookmarkRecord, error) {
	return loadKind[ports.BookmarkRecord](ctx, s, ports.KindBookmark, 0)
}

// History returns at most limit history entries, most recent first as saved.
func (s *Store) History(ctx context.Context, limit int) ([]ports.HistoryRecord, error) {
	return loadKind[ports.HistoryRecord](ctx, s, ports.KindHistory, limit)
}

// Downloads returns the stored downloads.
func (s *Store) Downloads(ctx context.Context) ([]ports.DownloadRecord, error) {
	return loadKind[ports.DownloadRecord](ctx, s, ports.KindDownload, 0)
}

// TopSites returns the stored top sites.
func (s *Store) TopSites(ctx context.Context) ([]ports.TopSiteRecord, error) {
	return loadKind[ports.TopSiteRecord](ctx, s, ports.KindTopSite, 0)
}

// DeleteProfile removes the profile's snapshot.
// Idempotent: deleting a nonexistent profile is not an error.
func (s *Store) DeleteProfile() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(s.profile); errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		} else {
			return err
		}
	})
}

var (
	_ ports.CorpusProvider = (*Store)(nil)
	_ ports.CorpusWriter   = (*Store)(nil)
)
