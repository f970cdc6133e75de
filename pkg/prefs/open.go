package prefs

import (
	"context"

	"github.com/matzehuels/cloverquilt/pkg/errors"
	"github.com/matzehuels/cloverquilt/pkg/observability"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config selects and configures a preference backend.
type Config struct {
	// Backend is one of the Backend* names. Empty means BackendFile.
	Backend string
	// Dir is the FileStore directory. Empty means DefaultDir.
	Dir   string
	Redis RedisConfig
	Mongo MongoConfig
}

// Open returns the store named by cfg.Backend. Every operation on the
// returned store is reported to the observability store hooks.
func Open(ctx context.Context, cfg Config) (Store, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = BackendFile
	}
	var (
		s   Store
		err error
	)
	switch backend {
	case BackendFile:
		s, err = NewFileStore(cfg.Dir)
	case BackendMemory:
		s = NewMemoryStore()
	case BackendRedis:
		s, err = NewRedisStore(ctx, cfg.Redis)
	case BackendMongo:
		s, err = NewMongoStore(ctx, cfg.Mongo)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"unknown prefs backend %q (want file, memory, redis or mongo)", backend)
	}
	if err != nil {
		return nil, err
	}
	return &observed{Store: s, backend: backend}, nil
}

// observed reports store traffic to the observability hooks.
type observed struct {
	Store
	backend string
}

func (o *observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, found, err := o.Store.Get(ctx, key)
	observability.Store().OnGet(ctx, o.backend, key, found, err)
	return v, found, err
}

func (o *observed) Set(ctx context.Context, key string, value []byte) error {
	err := o.Store.Set(ctx, key, value)
	observability.Store().OnSet(ctx, o.backend, key, len(value), err)
	return err
}
