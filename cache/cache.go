package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/EasterCompany/dex-welcome-service/config"
	"github.com/EasterCompany/dex-welcome-service/guild"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dex-welcome-service:"

// DB keeps server configs in Redis under server:<id>:config.
type DB struct {
	rdb *redis.Client
}

// New connects to Redis and verifies the connection. A nil config or an
// empty address yields a nil DB and no error.
func New(ctx context.Context, cfg *config.ConnectionConfig) (*DB, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to cache at %s: %w", cfg.Addr, err)
	}
	return &DB{rdb: rdb}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(rdb *redis.Client) *DB {
	return &DB{rdb: rdb}
}

func serverKey(serverID int64) string {
	return fmt.Sprintf("%sserver:%d:config", keyPrefix, serverID)
}

func (db *DB) Ping(ctx context.Context) error {
	return db.rdb.Ping(ctx).Err()
}

func (db *DB) Close() error {
	return db.rdb.Close()
}

// Load reads the document for serverID.
func (db *DB) Load(ctx context.Context, serverID int64) (*guild.ServerConfig, error) {
	data, err := db.rdb.Get(ctx, serverKey(serverID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %d", guild.ErrServerNotConfigured, serverID)
		}
		return nil, fmt.Errorf("could not load server config %d: %w", serverID, err)
	}
	cfg, err := guild.Decode(data, serverID)
	if err != nil {
		return nil, fmt.Errorf("could not decode server config %d: %w", serverID, err)
	}
	return cfg, nil
}

// Save overwrites the document for cfg.ServerID.
func (db *DB) Save(ctx context.Context, cfg *guild.ServerConfig) error {
	data, err := guild.Encode(cfg)
	if err != nil {
		return err
	}
	if err := db.rdb.Set(ctx, serverKey(cfg.ServerID), data, 0).Err(); err != nil {
		return fmt.Errorf("could not save server config %d: %w", cfg.ServerID, err)
	}
	return nil
}

// ServerIDs scans for every stored document.
func (db *DB) ServerIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	iter := db.rdb.Scan(ctx, 0, keyPrefix+"server:*:config", 0).Iterator()
	for iter.Next(ctx) {
		parts := strings.Split(strings.TrimPrefix(iter.Val(), keyPrefix), ":")
		if len(parts) != 3 {
			continue
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("could not scan server configs: %w", err)
	}
	return ids, nil
}

// Raw returns the stored bytes for serverID, for debugging tools.
func (db *DB) Raw(ctx context.Context, serverID int64) (string, error) {
	return db.rdb.Get(ctx, serverKey(serverID)).Result()
}
