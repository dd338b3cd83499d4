package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

const fileExt = ".json"

// Envelope is the on-disk form of one key. Origin names the context that
// wrote it so that watchers can skip their own writes.
type Envelope struct {
	Origin    string    `json:"origin"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FileRepository stores each key as <dir>/<key>.json. Several processes may
// open the same directory, each with its own origin.
type FileRepository struct {
	fs     afero.Fs
	dir    string
	origin string
	mu     sync.Mutex
}

func NewFileRepository(fsys afero.Fs, dir, origin string) (*FileRepository, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", dir, err)
	}
	return &FileRepository{fs: fsys, dir: dir, origin: origin}, nil
}

func (r *FileRepository) Dir() string { return r.dir }

func (r *FileRepository) Get(_ context.Context, key string) (string, bool, error) {
	data, err := afero.ReadFile(r.fs, r.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}

	env, err := DecodeEnvelope(data)
	if err != nil {
		// Hand the raw bytes up; the record layer treats them as corrupt.
		return string(data), true, nil
	}
	return env.Value, true, nil
}

func (r *FileRepository) Set(_ context.Context, key, value string) error {
	data, err := json.Marshal(Envelope{
		Origin:    r.origin,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tmp := filepath.Join(r.dir, "."+key+fileExt+".tmp")
	if err := afero.WriteFile(r.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := r.fs.Rename(tmp, r.path(key)); err != nil {
		_ = r.fs.Remove(tmp)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

func (r *FileRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.fs.Remove(r.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (r *FileRepository) Keys(_ context.Context) ([]string, error) {
	entries, err := afero.ReadDir(r.fs, r.dir)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if key, ok := KeyFromPath(entry.Name()); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *FileRepository) path(key string) string {
	return filepath.Join(r.dir, key+fileExt)
}

// KeyFromPath maps a data file path back to its key. Temporary and hidden
// files are rejected.
func KeyFromPath(path string) (string, bool) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
		return "", false
	}
	key := strings.TrimSuffix(name, fileExt)
	return key, key != ""
}

func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
