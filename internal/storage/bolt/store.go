// Package bolt is a single-file key/value book store built on bbolt, used
// when STORE_BACKEND=bolt. Each book is one JSON value in the "books" bucket
// keyed by its book key.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/mrlokans/pagescraper/internal/entities"
	"github.com/mrlokans/pagescraper/internal/library"
)

var bucketName = []byte("books")

type Store struct {
	path string
	db   *bbolt.DB
}

// Open creates the file and bucket if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for BoltDB: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open BoltDB: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Store{path: path, db: db}, nil
}

func (s *Store) GetBook(_ context.Context, key string) (*entities.Book, error) {
	var book *entities.Book
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return library.ErrBookNotFound
		}
		book = &entities.Book{}
		return json.Unmarshal(v, book)
	})
	if err != nil {
		return nil, err
	}
	if book.Pages == nil {
		book.Pages = []string{}
	}
	return book, nil
}

func (s *Store) PutBook(_ context.Context, book *entities.Book) error {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = now

	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("failed to encode book: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(book.URL), data)
	})
}

// DeleteBook succeeds for missing keys; bbolt's Delete already does.
func (s *Store) DeleteBook(_ context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
}

// ListBooks returns books in key order.
func (s *Store) ListBooks(_ context.Context) ([]entities.Book, error) {
	books := make([]entities.Book, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).ForEach(func(k, v []byte) error {
			var b entities.Book
			if err := json.Unmarshal(v, &b); err != nil {
				return fmt.Errorf("decode book %s: %w", k, err)
			}
			books = append(books, b)
			return nil
		})
	})
	return books, err
}

// Ping verifies the file is still open.
func (s *Store) Ping() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketName) == nil {
			return fmt.Errorf("bucket %s missing", bucketName)
		}
		return nil
	})
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
