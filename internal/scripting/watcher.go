package scripting

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounce drops repeated events for the same file; editors often write
// a file in several syscalls.
const debounce = 100 * time.Millisecond

// Watcher reports changed .lua files on Events. The game loop drains the
// channel and calls Engine.Reload; the watcher never touches the VM.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	log     *zap.Logger
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewWatcher(log *zap.Logger, dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		log:     log,
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher. Events is closed once the run loop exits.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.Events)

	last := make(map[string]time.Time)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isScriptFile(ev.Name) {
				continue
			}
			now := time.Now()
			if t, ok := last[ev.Name]; ok && now.Sub(t) < debounce {
				continue
			}
			last[ev.Name] = now
			select {
			case w.Events <- ev.Name:
			case <-w.closeCh:
				return
			default:
				// A reload is already pending; it will pick this change up.
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("script watcher error", zap.Error(err))
		case <-w.closeCh:
			return
		}
	}
}

func isScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".lua"
}
