package broadcast

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	repository "equipcare-hub.com/equipcare-hub/internal/repositories"
)

// FileWatcher turns changes to a FileRepository directory into storage
// events. The file write is itself the broadcast, so Publish does nothing.
type FileWatcher struct {
	watcher    *fsnotify.Watcher
	dir        string
	origin     string
	dispatcher *dispatcher
	logger     *zap.Logger

	mu       sync.Mutex
	lastSeen map[string]string

	done   chan struct{}
	wg     sync.WaitGroup
	closed sync.Once
}

func NewFileWatcher(dir, origin string, logger *zap.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &FileWatcher{
		watcher:    watcher,
		dir:        dir,
		origin:     origin,
		dispatcher: newDispatcher(defaultQueueSize, logger),
		logger:     logger.With(zap.String("origin", origin)),
		lastSeen:   make(map[string]string),
		done:       make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

func (w *FileWatcher) Origin() string { return w.origin }

func (w *FileWatcher) Publish(context.Context, string, string) error { return nil }

func (w *FileWatcher) Subscribe(key string, handler Handler) func() {
	return w.dispatcher.subscribe(key, handler)
}

func (w *FileWatcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.handleChange(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

func (w *FileWatcher) handleChange(path string) {
	key, ok := repository.KeyFromPath(path)
	if !ok {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	env, err := repository.DecodeEnvelope(data)
	if err != nil {
		w.logger.Warn("ignoring unreadable data file", zap.String("key", key), zap.Error(err))
		return
	}
	if env.Origin == w.origin || !w.markSeen(key, data) {
		return
	}

	w.dispatcher.enqueue(Event{Key: key, NewValue: env.Value, Origin: env.Origin})
}

// markSeen reports whether data differs from the last content seen for key.
// Several fsnotify events may fire for one rename.
func (w *FileWatcher) markSeen(key string, data []byte) bool {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.lastSeen[key] == hash {
		return false
	}
	w.lastSeen[key] = hash
	return true
}

func (w *FileWatcher) Close() error {
	var err error
	w.closed.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
		w.dispatcher.close()
	})
	return err
}
