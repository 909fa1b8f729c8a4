package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// BlobRepository stores whole JSON documents under fixed keys in Redis. It is
// the durable key-value backing for the notification and contact-message
// lists.
//
// Mutations are read-modify-write over the entire value with no
// compare-and-swap: two concurrent writers can both load the same snapshot
// and the second save will overwrite the first. Teacher-notification volume
// is low enough that this lost-update window is an accepted trade-off; it is
// a consistency boundary to keep in mind for multi-instance deployments.
type BlobRepository struct {
	client *redis.Client
}

// NewBlobRepository constructs the repository.
func NewBlobRepository(client *redis.Client) *BlobRepository {
	return &BlobRepository{client: client}
}

// Load unmarshals the blob stored under key into dest. A missing key is the
// first-run state and leaves dest untouched.
func (r *BlobRepository) Load(ctx context.Context, key string, dest interface{}) error {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return fmt.Errorf("blob get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal blob %s: %w", key, err)
	}
	return nil
}

// Save marshals the value and overwrites the blob stored under key.
func (r *BlobRepository) Save(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal blob %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("blob set %s: %w", key, err)
	}
	return nil
}
