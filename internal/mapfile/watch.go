package mapfile

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Change reports that the watched file was modified or removed by someone
// else.
type Change struct {
	Path    string
	Removed bool
	Digest  Digest
}

// Watcher follows one map file. It watches the parent directory so that
// editors which replace files by rename are still seen.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	changes chan Change
	errs    chan error
	done    chan struct{}
	once    sync.Once
}

// Watch starts watching path.
func Watch(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{
		path:    abs,
		watcher: fw,
		changes: make(chan Change, 8),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Changes delivers one value per observed change. It is closed by Close.
func (w *Watcher) Changes() <-chan Change { return w.changes }

// Errors delivers watcher failures.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Close stops watching.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) loop() {
	defer close(w.changes)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			change, ok := w.convert(event)
			if !ok {
				continue
			}
			select {
			case w.changes <- change:
			case <-w.done:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

func (w *Watcher) convert(event fsnotify.Event) (Change, bool) {
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if _, err := os.Stat(w.path); err == nil {
			return w.readChange()
		}
		return Change{Path: w.path, Removed: true}, true
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		return w.readChange()
	default:
		return Change{}, false
	}
}

func (w *Watcher) readChange() (Change, bool) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return Change{}, false
	}
	return Change{Path: w.path, Digest: Sum(data)}, true
}
