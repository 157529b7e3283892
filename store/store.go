// Package store keeps server configs as JSON files, one per server, named
// after the server id.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/EasterCompany/dex-welcome-service/guild"
)

const fileExt = ".json"

// FileStore reads and writes <dir>/<serverID>.json.
type FileStore struct {
	dir string
}

// New returns a FileStore rooted at dir, creating the directory if needed.
func New(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create config directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir is the directory the documents live in.
func (fs *FileStore) Dir() string {
	return fs.dir
}

func (fs *FileStore) path(serverID int64) string {
	return filepath.Join(fs.dir, strconv.FormatInt(serverID, 10)+fileExt)
}

// Load reads the document for serverID.
func (fs *FileStore) Load(_ context.Context, serverID int64) (*guild.ServerConfig, error) {
	data, err := os.ReadFile(fs.path(serverID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %d", guild.ErrServerNotConfigured, serverID)
		}
		return nil, fmt.Errorf("could not read server config %d: %w", serverID, err)
	}
	cfg, err := guild.Decode(data, serverID)
	if err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", fs.path(serverID), err)
	}
	return cfg, nil
}

// Save overwrites the document. The new content is written to a temporary
// file first and renamed over the old one.
func (fs *FileStore) Save(_ context.Context, cfg *guild.ServerConfig) error {
	data, err := guild.Encode(cfg)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(fs.dir, cfg.Key()+"-*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temp file for server config %d: %w", cfg.ServerID, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("could not write server config %d: %w", cfg.ServerID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not write server config %d: %w", cfg.ServerID, err)
	}
	if err := os.Rename(tmp.Name(), fs.path(cfg.ServerID)); err != nil {
		return fmt.Errorf("could not replace server config %d: %w", cfg.ServerID, err)
	}
	return nil
}

// ServerIDs lists every server with a document. Files whose name is not a
// server id are skipped.
func (fs *FileStore) ServerIDs(_ context.Context) ([]int64, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("could not list config directory %s: %w", fs.dir, err)
	}
	var ids []int64
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(name, fileExt), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
