package store

import (
	"context"
	"encoding/json"
	"sync"

	"backend-mapfit/internal/workout"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "mapfit:workouts:"

// Store is the ordered workout collection for one user, mirrored to a single
// Redis key as one JSON array. Every append rewrites the whole value; there
// are no incremental writes, so very large collections pay for each save.
type Store struct {
	rdb    *redis.Client
	userID string

	mu      sync.Mutex
	records []workout.Record
}

// Open loads the persisted collection for userID. A missing key, unreachable
// Redis, or an unparsable value all yield an empty collection; corrupt state
// never blocks the app.
func Open(ctx context.Context, rdb *redis.Client, userID string) *Store {
	s := &Store{rdb: rdb, userID: userID}
	if rdb == nil {
		return s
	}

	raw, err := rdb.Get(ctx, keyPrefix+userID).Result()
	if err != nil {
		return s
	}

	var records []workout.Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return s
	}
	s.records = records
	return s
}

// All returns the records oldest-first.
func (s *Store) All() []workout.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]workout.Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Append adds the record and immediately persists the full collection.
func (s *Store) Append(ctx context.Context, r workout.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return s.persistLocked(ctx)
}

// FindByID scans for a record by id.
func (s *Store) FindByID(id string) (workout.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return workout.Record{}, false
}

// Clear drops the in-memory collection and deletes the persisted key.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, keyPrefix+s.userID).Err()
}

func (s *Store) persistLocked(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(s.records)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, keyPrefix+s.userID, raw, 0).Err()
}
