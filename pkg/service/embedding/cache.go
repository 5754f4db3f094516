package embedding

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/interfaces"
	"github.com/zeebo/blake3"
)

// DefaultCacheTTL bounds how long a cached vector is trusted
const DefaultCacheTTL = 30 * 24 * time.Hour

const cacheKeyPrefix = "emb/v1/"

// BadgerCache persists question vectors across restarts so a reload only
// pays the oracle for questions it has not seen.
type BadgerCache struct {
	db  *badger.DB
	ttl time.Duration
}

var _ interfaces.EmbeddingCache = &BadgerCache{}

// OpenBadgerCache opens or creates a cache in dir. An empty dir keeps the
// cache in memory.
func OpenBadgerCache(dir string, ttl time.Duration) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open embedding cache", goerr.V("dir", dir))
	}
	return &BadgerCache{db: db, ttl: ttl}, nil
}

func (c *BadgerCache) Close() error {
	if err := c.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close embedding cache")
	}
	return nil
}

// Get returns nil, nil on a miss or an expired entry
func (c *BadgerCache) Get(ctx context.Context, model, text string) ([]float64, error) {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(model, text))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read embedding cache", goerr.V("model", model))
	}

	var vector []float64
	if err := cbor.Unmarshal(raw, &vector); err != nil {
		return nil, goerr.Wrap(err, "failed to decode cached vector", goerr.V("model", model))
	}
	return vector, nil
}

func (c *BadgerCache) Put(ctx context.Context, model, text string, vector []float64) error {
	raw, err := cbor.Marshal(vector)
	if err != nil {
		return goerr.Wrap(err, "failed to encode vector")
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(cacheKey(model, text), raw).WithTTL(c.ttl))
	})
	if err != nil {
		return goerr.Wrap(err, "failed to write embedding cache", goerr.V("model", model))
	}
	return nil
}

// cacheKey hashes model and text together so keys stay short and vectors
// from different models never collide.
func cacheKey(model, text string) []byte {
	h := blake3.New()
	_, _ = h.Write([]byte(model))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(text))
	return []byte(cacheKeyPrefix + hex.EncodeToString(h.Sum(nil)))
}
