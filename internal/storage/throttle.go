package storage

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic key derivation
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Throttle rate-limits refresh fetches per product URL. Entries survive
// restarts so a crash-looping process cannot hammer the tracked sites.
type Throttle interface {
	Close() error
	RecentlyChecked(url string) (bool, error)
	MarkChecked(url string) error
}

// ThrottleOptions controls retention for concrete throttle implementations.
type ThrottleOptions struct {
	CheckTTL        time.Duration
	CleanupInterval time.Duration
}

const (
	defaultCheckTTL        = time.Hour
	defaultCleanupInterval = 12 * time.Hour

	checkedBucket    = "checked_urls"
	expiryValueBytes = 8
)

// NewThrottle creates the configured throttle backend. An empty path
// disables throttling entirely.
func NewThrottle(path string, opts ThrottleOptions) (Throttle, error) {
	opts = normalizeThrottleOptions(opts)
	if strings.TrimSpace(path) == "" {
		return noopThrottle{}, nil
	}
	return openBoltThrottle(path, opts)
}

func normalizeThrottleOptions(opts ThrottleOptions) ThrottleOptions {
	if opts.CheckTTL <= 0 {
		opts.CheckTTL = defaultCheckTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopThrottle struct{}

func (noopThrottle) Close() error                         { return nil }
func (noopThrottle) RecentlyChecked(string) (bool, error) { return false, nil }
func (noopThrottle) MarkChecked(string) error             { return nil }

// boltThrottle implements Throttle backed by BoltDB.
type boltThrottle struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	checkTTL        time.Duration
	cleanupInterval time.Duration
}

func openBoltThrottle(path string, opts ThrottleOptions) (Throttle, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create throttle directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(checkedBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	t := &boltThrottle{
		db:              db,
		checkTTL:        opts.CheckTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	t.lastCleanup.Store(time.Now().Unix())
	return t, nil
}

// Close closes the BoltDB throttle.
func (b *boltThrottle) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// RecentlyChecked reports whether the URL was marked within the TTL.
// Expired entries are removed on the way out.
func (b *boltThrottle) RecentlyChecked(url string) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}

	if err := b.maybeCleanupExpired(time.Now()); err != nil {
		return false, err
	}

	var recent bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(checkedBucket))
		if bucket == nil {
			return fmt.Errorf("checked bucket missing")
		}

		key := urlKey(url)
		value := bucket.Get(key)
		if value == nil {
			recent = false
			return nil
		}

		expiry, ok := decodeExpiry(value)
		if !ok || !expiry.After(time.Now()) {
			recent = false
			return bucket.Delete(key)
		}

		recent = true
		return nil
	})
	return recent, err
}

// MarkChecked records that the URL was just fetched.
func (b *boltThrottle) MarkChecked(url string) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(checkedBucket))
		if bucket == nil {
			return fmt.Errorf("checked bucket missing")
		}
		buf := make([]byte, expiryValueBytes)
		binary.BigEndian.PutUint64(buf, uint64(now.Add(b.checkTTL).Unix()))
		return bucket.Put(urlKey(url), buf)
	})
}

// maybeCleanupExpired removes expired entries on a fixed cadence to avoid
// unbounded growth.
func (b *boltThrottle) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(checkedBucket))
		if bucket == nil {
			return fmt.Errorf("checked bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func urlKey(url string) []byte {
	sum := sha1.Sum([]byte(url))
	return []byte(hex.EncodeToString(sum[:]))
}

func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) != expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
