package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/avykov/authkeeper/internal/client/storage"
)

// Compile-time check that Storage implements storage.KVStore
var _ storage.KVStore = (*Storage)(nil)

// Get returns the value for key.
// Returns storage.ErrKeyNotFound if the key does not exist.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	var value string

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return fmt.Errorf("kv bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrKeyNotFound
		}

		// Копируем данные: значение bbolt валидно только внутри транзакции
		value = string(data)
		return nil
	})

	if err != nil {
		return "", err
	}

	return value, nil
}

// Set stores value under key, overwriting any previous value
func (s *Storage) Set(ctx context.Context, key, value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return fmt.Errorf("kv bucket not found")
		}

		if err := bucket.Put([]byte(key), []byte(value)); err != nil {
			return fmt.Errorf("failed to save value: %w", err)
		}

		return nil
	})
}

// Delete removes key. Deleting a missing key is a no-op.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return fmt.Errorf("kv bucket not found")
		}

		if err := bucket.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete value: %w", err)
		}

		return nil
	})
}
