package cliconfig

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/luvmdy/SyncTrayzor/pkg/log"
)

// debounceDelay coalesces editor write bursts into one reload.
const debounceDelay = 100 * time.Millisecond

// ConfigWatcher monitors synctrayd's own config file via fsnotify and
// reports freshly loaded file configs through a callback. Applying the
// change (or deciding a restart is needed) is the caller's business.
type ConfigWatcher struct {
	path     string
	onChange func(FileConfig)
	logger   log.Logger

	mu       sync.Mutex
	debounce *time.Timer
}

// NewConfigWatcher creates a watcher for the config file at path.
func NewConfigWatcher(path string, onChange func(FileConfig), logger log.Logger) *ConfigWatcher {
	return &ConfigWatcher{path: path, onChange: onChange, logger: logger}
}

// Run watches the config file's directory until ctx is cancelled. Watching
// the directory rather than the file survives the rename-and-replace
// pattern editors use.
func (w *ConfigWatcher) Run(ctx context.Context) {
	if w.path == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Warn("config watcher unavailable", log.Err(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		w.logger.Warn("config watcher failed to watch directory",
			log.String("dir", filepath.Dir(w.path)),
			log.Err(err),
		)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.debounceReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", log.Err(err))
		}
	}
}

func (w *ConfigWatcher) debounceReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(debounceDelay, w.reload)
}

func (w *ConfigWatcher) reload() {
	fc, err := LoadFileConfig(w.path)
	if err != nil {
		w.logger.Warn("config file changed but could not be loaded",
			log.String("path", w.path),
			log.Err(err),
		)
		return
	}
	w.logger.Info("config file changed", log.String("path", w.path))
	w.onChange(fc)
}
