package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	bolt "go.etcd.io/bbolt"

	"github.com/go-sod/boss/internal/database"
	"github.com/go-sod/boss/internal/experiment/model"
)

const (
	problemKeys = "problem:keys:"
	prefix      = "result:"
)

type FilterFn func(result model.Result) bool

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

func (db *DB) extractKey(key string) string {
	prefixPos := strings.Index(key, prefix)

	return key[prefixPos+len(prefix):]
}

// Problems lists every problem with at least one stored result.
func (db *DB) Problems() ([]string, error) {
	var problems []string
	err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(problemKeys))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			problems = append(problems, db.extractKey(string(k)))
		}
		return nil
	})

	return problems, err
}

func (db *DB) Store(_ context.Context, result model.Result) error {
	bytes, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("unable to encode result: %w", err)
	}

	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(prefix + result.Problem))
		if err != nil {
			return fmt.Errorf("unable to create bucket: %w", err)
		}
		if err := b.Put([]byte(result.ID.String()), bytes); err != nil {
			return fmt.Errorf("unable to put result: %w", err)
		}
		keys, err := tx.CreateBucketIfNotExists([]byte(problemKeys))
		if err != nil {
			return fmt.Errorf("unable to create problems bucket: %w", err)
		}
		if err := keys.Put([]byte(prefix+result.Problem), []byte{0x0}); err != nil {
			return fmt.Errorf("unable to put to problems bucket: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}

	return nil
}

func (db *DB) Delete(_ context.Context, result model.Result) error {
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(prefix + result.Problem))
		if b == nil {
			return nil
		}

		return b.Delete([]byte(result.ID.String()))
	}); err != nil {
		return fmt.Errorf("update transaction error: %w", err)
	}

	return nil
}

// FindAll returns the results of every problem accepted by filter, oldest
// first.
func (db *DB) FindAll(_ context.Context, filter FilterFn) ([]model.Result, error) {
	var results []model.Result
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		keys := tx.Bucket([]byte(problemKeys))
		if keys == nil {
			return nil
		}
		return keys.ForEach(func(k, _ []byte) error {
			b := tx.Bucket(k)
			if b == nil {
				return nil
			}
			found, err := decodeAll(b, filter)
			if err != nil {
				return err
			}
			results = append(results, found...)
			return nil
		})
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %w", err)
	}

	sortByTime(results)
	return results, nil
}

func (db *DB) FindByProblem(problem string, filter FilterFn) ([]model.Result, error) {
	var results []model.Result
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(prefix + problem))
		if b == nil {
			return nil
		}
		found, err := decodeAll(b, filter)
		results = found
		return err
	}); err != nil {
		return nil, fmt.Errorf("view transaction error: %w", err)
	}

	sortByTime(results)
	return results, nil
}

func (db *DB) CountByProblem(problem string) (int, error) {
	var length int
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(prefix + problem))
		if b == nil {
			return nil
		}
		length = b.Stats().KeyN
		return nil
	}); err != nil {
		return 0, fmt.Errorf("view transaction error: %w", err)
	}

	return length, nil
}

func decodeAll(b *bolt.Bucket, filter FilterFn) ([]model.Result, error) {
	var results []model.Result
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var r model.Result
		if err := json.Unmarshal(v, &r); err != nil {
			return nil, fmt.Errorf("unable to decode result %s: %w", k, err)
		}
		if filter == nil || filter(r) {
			results = append(results, r)
		}
	}
	return results, nil
}

func sortByTime(results []model.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})
}
