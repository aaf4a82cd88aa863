package cache

import (
	"github.com/redis/go-redis/v9"
)

// Store is the injected Redis handle used by the caches in this package. A
// nil client degrades every cache call to a miss so the database remains the
// source of truth; it is never a hard dependency.
type Store struct {
	Client *redis.Client
}

// NewStore wraps an already-connected client.
func NewStore(client *redis.Client) *Store {
	return &Store{Client: client}
}
