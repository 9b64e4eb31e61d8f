package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/database"
	apperrors "mergington-activities/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// Source supplies the seed catalog once at startup.
type Source interface {
	Name() string
	Load(ctx context.Context) (*Document, error)
}

// NewSource picks the seed source named in cfg. rdb is only used, and only
// required, for the redis source.
func NewSource(cfg config.SeedConfig, rdb *database.RedisClient) (Source, error) {
	switch cfg.Source {
	case "", config.SeedSourceEmbedded:
		return EmbeddedSource{}, nil
	case config.SeedSourceFile:
		return FileSource{Path: cfg.Path}, nil
	case config.SeedSourceRedis:
		if rdb == nil {
			return nil, fmt.Errorf("seed source %q needs a redis client", cfg.Source)
		}
		return NewRedisSource(rdb, cfg.RedisKey), nil
	default:
		return nil, fmt.Errorf("unknown seed source %q", cfg.Source)
	}
}

type EmbeddedSource struct{}

func (EmbeddedSource) Name() string { return config.SeedSourceEmbedded }

func (EmbeddedSource) Load(context.Context) (*Document, error) {
	return Default()
}

// FileSource reads a JSON catalog from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return config.SeedSourceFile + ":" + s.Path }

func (s FileSource) Load(context.Context) (*Document, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, apperrors.NewCatalogUnavailableError(s.Name(), err)
	}
	return Parse(raw)
}

// RedisSource reads the catalog document stored as a JSON string under Key.
type RedisSource struct {
	client *database.RedisClient
	key    string
}

func NewRedisSource(client *database.RedisClient, key string) *RedisSource {
	return &RedisSource{client: client, key: key}
}

func (s *RedisSource) Name() string { return config.SeedSourceRedis + ":" + s.key }

func (s *RedisSource) Load(ctx context.Context) (*Document, error) {
	raw, err := s.client.Fetch(ctx, s.key)
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.NewCatalogUnavailableError(s.Name(), fmt.Errorf("key not found"))
	}
	if err != nil {
		return nil, apperrors.NewCatalogUnavailableError(s.Name(), err)
	}
	return Parse(raw)
}

// Put validates doc and stores it under the source key. Used by tooling to
// publish a catalog; the running service only reads.
func (s *RedisSource) Put(ctx context.Context, doc *Document) error {
	raw, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if _, err := Parse(raw); err != nil {
		return err
	}
	return s.client.Store(ctx, s.key, raw)
}
