package enrich

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketName = "package_descriptions"

// Cache persists package descriptions in a bbolt file
type Cache struct {
	db *bolt.DB
}

// OpenCache opens (creating if needed) the cache file at path
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open description cache %s: %w", path, err)
	}

	return &Cache{db: db}, nil
}

// Get returns the cached description for name
func (c *Cache) Get(name string) (string, bool) {
	var result string
	err := c.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return bolt.ErrBucketNotFound
		}
		data := bucket.Get([]byte(name))
		if data == nil {
			return bolt.ErrBucketNotFound
		}
		result = string(data)
		return nil
	})
	return result, err == nil
}

// Put stores a description
func (c *Cache) Put(name, description string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(name), []byte(description))
	})
}

// Close releases the file lock
func (c *Cache) Close() error {
	return c.db.Close()
}
