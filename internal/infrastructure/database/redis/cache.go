package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/MolGraph-Pipeline/pkg/errors"
)

// DefaultCacheTTL bounds how long a converted record is retained.
const DefaultCacheTTL = 24 * time.Hour

// keyPrefix namespaces cache entries so the instance can be shared.
const keyPrefix = "molgraph:conv:"

// ConversionCache is the Redis-backed SMILES-to-SDF memo.  Keys are the
// SHA-256 of the exact SMILES text: SMILES strings can contain characters
// awkward in Redis key tooling, and hashing keeps keys bounded.
type ConversionCache struct {
	client *Client
	ttl    time.Duration
}

// NewConversionCache wraps a connected client.  A non-positive ttl selects
// DefaultCacheTTL.
func NewConversionCache(client *Client, ttl time.Duration) *ConversionCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &ConversionCache{client: client, ttl: ttl}
}

func cacheKey(smiles string) string {
	sum := sha256.Sum256([]byte(smiles))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get looks up the converted record for a SMILES string.
func (c *ConversionCache) Get(ctx context.Context, smiles string) (string, bool, error) {
	record, err := c.client.rdb.Get(ctx, cacheKey(smiles)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, errors.CodeCacheError, "conversion cache read failed")
	}
	return record, true, nil
}

// Set stores the converted record for a SMILES string.
func (c *ConversionCache) Set(ctx context.Context, smiles, record string) error {
	if err := c.client.rdb.Set(ctx, cacheKey(smiles), record, c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "conversion cache write failed")
	}
	return nil
}
