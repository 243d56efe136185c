package cache

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/syedsofiyan2004/rem/internal/speech"
)

// DefaultTTL bounds how long a synthesized result stays reusable.
const DefaultTTL = 15 * time.Minute

var (
	ErrInvalidStoreType = errors.New("cache: unknown store type")
	ErrInvalidConfig    = errors.New("cache: invalid store configuration")
)

// Entry is a cached synthesis result, ready to serve without touching
// the speech backend again.
type Entry struct {
	AudioBase64 string          `json:"audio_b64"`
	Visemes     []speech.Viseme `json:"visemes"`
	VoiceID     string          `json:"voice_id"`
}

// Store caches synthesis results under normalized request keys. A miss
// is (nil, nil), not an error.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Put(ctx context.Context, key string, entry *Entry) error
	Close() error
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Key derives the cache key for a synthesis request. Text is lowercased
// and whitespace-collapsed so trivially re-phrased requests hit the
// same entry; kind keeps spoken and sung renditions of the same text
// apart.
func Key(kind, text, lang, mode string) string {
	norm := whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
	return kind + ":" + strings.ToLower(strings.TrimSpace(lang)) + "|" + strings.ToLower(strings.TrimSpace(mode)) + "|" + norm
}

// StoreType selects the cache driver.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

// StoreOption configures a cache store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	ttl         time.Duration
	redisClient *redis.Client
	clock       func() time.Time
}

// WithTTL overrides the default entry lifetime.
func WithTTL(ttl time.Duration) StoreOption {
	return func(c *storeConfig) {
		c.ttl = ttl
	}
}

// WithRedisClient sets the client for the redis driver.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// WithClock overrides the memory driver's time source for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(c *storeConfig) {
		c.clock = now
	}
}

// NewStore creates a cache store for the given driver type. The redis
// driver requires WithRedisClient.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	config := &storeConfig{ttl: DefaultTTL, clock: time.Now}
	for _, opt := range opts {
		opt(config)
	}
	if config.ttl <= 0 {
		config.ttl = DefaultTTL
	}

	switch storeType {
	case StoreTypeMemory:
		return &memoryStore{
			entries: make(map[string]memoryEntry),
			ttl:     config.ttl,
			now:     config.clock,
		}, nil

	case StoreTypeRedis:
		if config.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		return &redisStore{
			client: config.redisClient,
			ttl:    config.ttl,
		}, nil

	default:
		return nil, ErrInvalidStoreType
	}
}
