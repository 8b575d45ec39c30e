// Package watcher watches dashboard directories with fsnotify and delivers
// debounced batches of changes to handlers.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/conneroisu/dashvars/internal/errors"
	"github.com/conneroisu/dashvars/internal/logging"
	"github.com/conneroisu/dashvars/internal/validation"
)

// FileWatcher watches for file changes with debouncing
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	filters   []FileFilter
	handlers  []ChangeHandler
	logger    logging.Logger
	mutex     sync.RWMutex
}

// ChangeEvent represents a file change event
type ChangeEvent struct {
	Type    EventType
	Path    string
	ModTime time.Time
	Size    int64
}

// EventType represents the type of file change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// FileFilter determines if a file should be watched
type FileFilter func(path string) bool

// ChangeHandler handles a debounced batch of changes
type ChangeHandler func(ctx context.Context, events []ChangeEvent) error

// Debouncer groups rapid file changes together
type Debouncer struct {
	delay   time.Duration
	events  chan ChangeEvent
	output  chan []ChangeEvent
	timer   *time.Timer
	pending []ChangeEvent
	mutex   sync.Mutex
}

// NewFileWatcher creates a new file watcher. A nil logger discards output.
func NewFileWatcher(debounceDelay time.Duration, logger logging.Logger) (*FileWatcher, error) {
	if debounceDelay <= 0 {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidValue, "debounce delay must be positive")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeInternalError, "cannot create file watcher", err)
	}

	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	fw := &FileWatcher{
		watcher:   watcher,
		debouncer: NewDebouncer(debounceDelay),
		filters:   make([]FileFilter, 0),
		handlers:  make([]ChangeHandler, 0),
		logger:    logger.WithComponent("watcher"),
	}

	return fw, nil
}

// AddFilter adds a file filter. A change passes when every filter accepts it.
func (fw *FileWatcher) AddFilter(filter FileFilter) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.filters = append(fw.filters, filter)
}

// AddHandler adds a change handler
func (fw *FileWatcher) AddHandler(handler ChangeHandler) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.handlers = append(fw.handlers, handler)
}

// AddPath adds a single file or directory to watch
func (fw *FileWatcher) AddPath(path string) error {
	cleanPath, err := validation.ValidatePath(path)
	if err != nil {
		return err
	}
	if err := fw.watcher.Add(cleanPath); err != nil {
		return errors.WrapIO(err, errors.ErrCodeInvalidPath, "cannot watch path").WithLocation(path, 0)
	}
	return nil
}

// AddRecursive adds a directory and all subdirectories to watch.
// Directories matching skip are not descended into.
func (fw *FileWatcher) AddRecursive(root string, skip ...FileFilter) error {
	cleanRoot, err := validation.ValidatePath(root)
	if err != nil {
		return err
	}

	err = filepath.WalkDir(cleanRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		if path != cleanRoot {
			for _, filter := range skip {
				if !filter(path) {
					return filepath.SkipDir
				}
			}
		}

		fw.logger.Debug(context.Background(), "Watching directory", "path", path)
		return fw.watcher.Add(path)
	})
	if err != nil {
		return errors.WrapIO(err, errors.ErrCodeInvalidPath, "cannot watch directory tree").WithLocation(root, 0)
	}
	return nil
}

// WatchedPaths returns the paths currently registered with fsnotify
func (fw *FileWatcher) WatchedPaths() []string {
	paths := fw.watcher.WatchList()
	sort.Strings(paths)
	return paths
}

// Start starts the file watcher. Goroutines stop when ctx is done.
func (fw *FileWatcher) Start(ctx context.Context) error {
	// Start debouncer
	go fw.debouncer.start(ctx)

	// Start event processor
	go fw.processEvents(ctx)

	// Start main watcher loop
	go fw.watchLoop(ctx)

	return nil
}

// Stop stops the file watcher and cleans up resources
func (fw *FileWatcher) Stop() error {
	fw.debouncer.mutex.Lock()
	if fw.debouncer.timer != nil {
		fw.debouncer.timer.Stop()
	}
	fw.debouncer.mutex.Unlock()

	return fw.watcher.Close()
}

func (fw *FileWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleFsnotifyEvent(ctx, event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			// Log error but continue watching
			fw.logger.Warn(ctx, err, "File watcher error")
		}
	}
}

func (fw *FileWatcher) handleFsnotifyEvent(ctx context.Context, event fsnotify.Event) {
	info, statErr := os.Stat(event.Name)

	// New directories are watched too so dashboards created in them are seen.
	if statErr == nil && info.IsDir() {
		if event.Op&fsnotify.Create == fsnotify.Create {
			if err := fw.watcher.Add(event.Name); err != nil {
				fw.logger.Warn(ctx, err, "Cannot watch new directory", "path", event.Name)
			}
		}
		return
	}

	if !fw.accepts(event.Name) {
		return
	}

	var modTime time.Time
	var size int64
	if statErr == nil {
		modTime = info.ModTime()
		size = info.Size()
	}

	changeEvent := ChangeEvent{
		Type:    eventType(event.Op),
		Path:    event.Name,
		ModTime: modTime,
		Size:    size,
	}

	select {
	case fw.debouncer.events <- changeEvent:
	default:
		fw.logger.Debug(ctx, "Dropping change event, queue full", "path", event.Name)
	}
}

func (fw *FileWatcher) accepts(path string) bool {
	fw.mutex.RLock()
	defer fw.mutex.RUnlock()

	for _, filter := range fw.filters {
		if !filter(path) {
			return false
		}
	}
	return true
}

func eventType(op fsnotify.Op) EventType {
	switch {
	case op&fsnotify.Create == fsnotify.Create:
		return EventTypeCreated
	case op&fsnotify.Write == fsnotify.Write:
		return EventTypeModified
	case op&fsnotify.Remove == fsnotify.Remove:
		return EventTypeDeleted
	case op&fsnotify.Rename == fsnotify.Rename:
		return EventTypeRenamed
	default:
		return EventTypeModified
	}
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case events := <-fw.debouncer.output:
			fw.mutex.RLock()
			handlers := fw.handlers
			fw.mutex.RUnlock()

			fw.logger.Debug(ctx, "Processing change batch", "count", len(events))
			for _, handler := range handlers {
				if err := handler(ctx, events); err != nil {
					// Log error but continue processing
					fw.logger.Error(ctx, err, "File watcher handler failed")
				}
			}
		}
	}
}

// NewDebouncer creates a debouncer that emits batches after delay of quiet.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		events:  make(chan ChangeEvent, 100),
		output:  make(chan []ChangeEvent, 10),
		pending: make([]ChangeEvent, 0),
	}
}

// Output returns the channel receiving debounced batches.
func (d *Debouncer) Output() <-chan []ChangeEvent {
	return d.output
}

func (d *Debouncer) start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.events:
			d.addEvent(event)
		}
	}
}

func (d *Debouncer) addEvent(event ChangeEvent) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.pending = append(d.pending, event)

	// Reset timer
	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.flush()
	})
}

// flush emits the pending events, one per path, sorted by path. The last
// event seen for a path wins.
func (d *Debouncer) flush() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(d.pending) == 0 {
		return
	}

	eventMap := make(map[string]ChangeEvent)
	for _, event := range d.pending {
		eventMap[event.Path] = event
	}

	events := make([]ChangeEvent, 0, len(eventMap))
	for _, event := range eventMap {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Path < events[j].Path
	})

	select {
	case d.output <- events:
	default:
		// Channel full, skip
	}

	d.pending = d.pending[:0]
}

// ExtensionFilter accepts paths whose extension, compared case-insensitively,
// is one of exts.
func ExtensionFilter(exts ...string) FileFilter {
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = true
	}
	return func(path string) bool {
		return allowed[strings.ToLower(filepath.Ext(path))]
	}
}

// ExcludeFilter rejects paths whose base name or full path matches one of
// the filepath.Match patterns.
func ExcludeFilter(patterns ...string) FileFilter {
	return func(path string) bool {
		base := filepath.Base(path)
		for _, pattern := range patterns {
			if ok, _ := filepath.Match(pattern, base); ok {
				return false
			}
			if ok, _ := filepath.Match(pattern, path); ok {
				return false
			}
		}
		return true
	}
}

// NoTempFilter rejects editor swap and backup files.
func NoTempFilter(path string) bool {
	base := filepath.Base(path)
	return !strings.HasPrefix(base, ".#") &&
		!strings.HasSuffix(base, "~") &&
		!strings.HasSuffix(base, ".swp")
}

// NoGitFilter rejects paths inside a .git directory and the directory itself.
func NoGitFilter(path string) bool {
	slashed := filepath.ToSlash(path)
	return !strings.HasPrefix(slashed, ".git/") && !strings.Contains(slashed, "/.git/") &&
		filepath.Base(path) != ".git"
}
