package outbox

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Store wraps BoltDB to persist pending emails while SMTP is unavailable.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "outbox"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

// Enqueue stores a pending email under a time-ordered key.
func (s *Store) Enqueue(email Email) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	email.normalize()
	email.bucketKey = []byte(buildKey(email))

	payload, err := json.Marshal(email)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(email.bucketKey, payload)
	})
}

// GetBatch returns up to limit pending emails in enqueue order without
// removing them. Entries that fail to decode are deleted on sight so a
// corrupt record cannot sit in the queue forever.
func (s *Store) GetBatch(limit int) ([]Email, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var emails []Email
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil && len(emails) < limit; k, v = c.Next() {
			var email Email
			if err := json.Unmarshal(v, &email); err != nil {
				if err := c.Delete(); err != nil {
					return err
				}
				continue
			}
			email.bucketKey = append([]byte(nil), k...)
			emails = append(emails, email)
		}
		return nil
	})
	return emails, err
}

// Remove deletes the provided email from the outbox.
func (s *Store) Remove(email Email) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if len(email.bucketKey) == 0 {
		return s.deleteByID(email.ID)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete(email.bucketKey)
	})
}

// Requeue moves an email to the back of the queue with a fresh timestamp.
// The delete and reinsert happen in one transaction so a crash mid-retry
// cannot drop the item.
func (s *Store) Requeue(email Email) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	oldKey := email.bucketKey
	email.normalize()
	email.Timestamp = time.Now()
	email.bucketKey = []byte(buildKey(email))

	payload, err := json.Marshal(email)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if len(oldKey) > 0 {
			if err := b.Delete(oldKey); err != nil {
				return err
			}
		}
		return b.Put(email.bucketKey, payload)
	})
}

// Size returns the number of pending emails.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) deleteByID(id string) error {
	if id == "" {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var email Email
			if err := json.Unmarshal(v, &email); err != nil {
				continue
			}
			if email.ID == id {
				return c.Delete()
			}
		}
		return nil
	})
}

func buildKey(email Email) string {
	return fmt.Sprintf("%020d_%s", email.Timestamp.UnixNano(), email.ID)
}
