// Package session keeps each user's in-progress seat selection in Redis
// between the hold and the payment confirmation.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSelection is returned by Load when the user has no stored selection.
var ErrNoSelection = errors.New("no seat selection in session")

// Selection is the booking state carried from the hold to the payment.
type Selection struct {
	SeatIDs   []uint64 `json:"selected_seats"`
	TheaterID uint64   `json:"theater_id"`
}

// Store saves selections under booking:session:{user_id} with a TTL.
type Store struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewStore returns a Store whose entries expire after ttl.
func NewStore(rdb redis.Cmdable, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func key(userID uint64) string { return fmt.Sprintf("booking:session:%d", userID) }

// Save replaces the user's selection.
func (s *Store) Save(ctx context.Context, userID uint64, sel Selection) error {
	b, err := json.Marshal(sel)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(userID), b, s.ttl).Err()
}

// Load returns the user's selection or ErrNoSelection when it is missing,
// expired, unreadable or incomplete.
func (s *Store) Load(ctx context.Context, userID uint64) (Selection, error) {
	b, err := s.rdb.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Selection{}, ErrNoSelection
	}
	if err != nil {
		return Selection{}, err
	}
	var sel Selection
	if err := json.Unmarshal(b, &sel); err != nil || sel.TheaterID == 0 || len(sel.SeatIDs) == 0 {
		return Selection{}, ErrNoSelection
	}
	return sel, nil
}

// Clear removes the user's selection.  Clearing a missing entry is not an
// error.
func (s *Store) Clear(ctx context.Context, userID uint64) error {
	return s.rdb.Del(ctx, key(userID)).Err()
}
