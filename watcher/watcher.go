package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"remindbot/parser"
	"remindbot/reminder"
)

// FileEvent is sent when a markdown file was (re)parsed.
type FileEvent struct {
	FilePath  string
	Reminders []*reminder.Reminder
	Skipped   []parser.Skipped
	Err       error
}

// Watcher watches files/directories for changes and parses reminders
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	Events    chan FileEvent
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	logger    *zap.Logger
}

// New creates a new Watcher. A nil logger disables logging.
func New(logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		fsWatcher: fsw,
		Events:    make(chan FileEvent, 10),
		done:      make(chan struct{}),
		logger:    logger,
	}, nil
}

// Watch adds a file or a directory tree, whichever path is.
func (w *Watcher) Watch(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return w.WatchDirectory(path)
	}
	return w.WatchFile(path)
}

// WatchFile adds a single file to the watch list
func (w *Watcher) WatchFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	return w.fsWatcher.Add(absPath)
}

// WatchDirectory adds a directory and all its subdirectories to the watch list
func (w *Watcher) WatchDirectory(dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	return filepath.Walk(absDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if err := w.fsWatcher.Add(path); err != nil {
				w.logger.Warn("could not watch directory", zap.String("path", path), zap.Error(err))
			}
		}
		return nil
	})
}

// Start begins watching for file changes
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.run()
}

// Stop stops the watcher and waits for it to exit. It is safe to call twice.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fsWatcher.Close()
	})
	w.wg.Wait()
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if filepath.Ext(event.Name) != ".md" {
				// New subdirectories get watched too
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						if err := w.WatchDirectory(event.Name); err != nil {
							w.logger.Warn("could not watch new directory", zap.String("path", event.Name), zap.Error(err))
						}
					}
				}
				continue
			}

			fe := parseFile(event.Name, time.Now())
			w.logger.Debug("markdown file parsed",
				zap.String("path", fe.FilePath),
				zap.Int("reminders", len(fe.Reminders)),
				zap.Int("skipped", len(fe.Skipped)))

			select {
			case w.Events <- fe:
			case <-w.done:
				return
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func parseFile(path string, now time.Time) FileEvent {
	reminders, skipped, err := parser.ParseFile(path, now)
	return FileEvent{
		FilePath:  path,
		Reminders: reminders,
		Skipped:   skipped,
		Err:       err,
	}
}

// ParseInitial parses a file or every markdown file below a directory, one
// event per file, and reports whether path is a directory.
func ParseInitial(path string) ([]FileEvent, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, false, err
	}

	now := time.Now()
	if !info.IsDir() {
		fe := parseFile(absPath, now)
		return []FileEvent{fe}, false, fe.Err
	}

	var events []FileEvent
	err = filepath.Walk(absPath, func(filePath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(filePath) == ".md" {
			events = append(events, parseFile(filePath, now))
		}
		return nil
	})

	return events, true, err
}
