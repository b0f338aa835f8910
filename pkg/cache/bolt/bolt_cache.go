package boltcache

import (
	"bytes"

	"github.com/boltdb/bolt"

	"github.com/moonwalker/searchkit/pkg/cache"
)

type boltcache struct {
	storePath  string
	bucketName []byte

	db     *bolt.DB
	opened bool
}

func New(storePath string, bucketName string) *boltcache {
	return &boltcache{storePath: storePath, bucketName: []byte(bucketName)}
}

var _ cache.Cache = (*boltcache)(nil)

func (c *boltcache) open() (err error) {
	if c.opened {
		return
	}

	c.db, err = bolt.Open(c.storePath, 0600, nil)
	if err != nil {
		return
	}

	err = c.db.Update(func(tx *bolt.Tx) error {
		_, err = tx.CreateBucketIfNotExists(c.bucketName)
		return err
	})

	if err == nil {
		c.opened = true
	}

	return
}

func (c *boltcache) Get(key string) (val []byte, err error) {
	err = c.open()
	if err != nil {
		return
	}

	err = c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(c.bucketName)
		// bolt slices are only valid inside the transaction
		if v := b.Get([]byte(key)); v != nil {
			val = append([]byte(nil), v...)
		}
		return nil
	})

	return
}

func (c *boltcache) Set(key string, val []byte, ttl int64) (err error) {
	err = c.open()
	if err != nil {
		return
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(c.bucketName)
		return b.Put([]byte(key), val)
	})
}

func (c *boltcache) Delete(key string) (err error) {
	err = c.open()
	if err != nil {
		return
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(c.bucketName)
		return b.Delete([]byte(key))
	})
}

func (c *boltcache) DeleteAll(prefix string) (err error) {
	err = c.open()
	if err != nil {
		return
	}

	p := []byte(prefix)
	return c.db.Update(func(tx *bolt.Tx) error {
		cur := tx.Bucket(c.bucketName).Cursor()
		for k, _ := cur.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = cur.Seek(p) {
			if err := cur.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *boltcache) Close() error {
	if !c.opened {
		return nil
	}
	c.opened = false
	return c.db.Close()
}
