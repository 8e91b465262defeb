package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Tuning holds the hot-reloadable exploration parameters. Unlike Config
// these can change while the server runs; the next snapshot or layout
// run picks them up.
type Tuning struct {
	NodeSpacing         float64 `yaml:"node_spacing"`
	DoubleClickWindowMS int     `yaml:"double_click_window_ms"`
	SingleClickDelayMS  int     `yaml:"single_click_delay_ms"`
	HoverHideDelayMS    int     `yaml:"hover_hide_delay_ms"`
}

// DefaultTuning returns the built-in tuning values
func DefaultTuning() Tuning {
	return Tuning{
		NodeSpacing:         80,
		DoubleClickWindowMS: 400,
		SingleClickDelayMS:  250,
		HoverHideDelayMS:    250,
	}
}

// DoubleClickWindow returns the window as a duration
func (t Tuning) DoubleClickWindow() time.Duration {
	return time.Duration(t.DoubleClickWindowMS) * time.Millisecond
}

// SingleClickDelay returns the delay as a duration
func (t Tuning) SingleClickDelay() time.Duration {
	return time.Duration(t.SingleClickDelayMS) * time.Millisecond
}

// HoverHideDelay returns the delay as a duration
func (t Tuning) HoverHideDelay() time.Duration {
	return time.Duration(t.HoverHideDelayMS) * time.Millisecond
}

// normalize replaces out-of-range values with the defaults
func (t Tuning) normalize() Tuning {
	def := DefaultTuning()
	if t.NodeSpacing <= 0 {
		t.NodeSpacing = def.NodeSpacing
	}
	if t.DoubleClickWindowMS <= 0 {
		t.DoubleClickWindowMS = def.DoubleClickWindowMS
	}
	if t.SingleClickDelayMS <= 0 {
		t.SingleClickDelayMS = def.SingleClickDelayMS
	}
	if t.HoverHideDelayMS <= 0 {
		t.HoverHideDelayMS = def.HoverHideDelayMS
	}
	return t
}

// LoadTuning reads and parses a tuning file. Missing keys fall back to
// the defaults.
func LoadTuning(path string) (Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultTuning(), fmt.Errorf("reading tuning file: %w", err)
	}
	t := DefaultTuning()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return DefaultTuning(), fmt.Errorf("parsing tuning file: %w", err)
	}
	return t.normalize(), nil
}

// TuningWatcher serves the current tuning values and reloads them when
// the file changes on disk. A broken or deleted file keeps the last good
// values.
type TuningWatcher struct {
	path   string
	logger *zap.Logger

	mu       sync.RWMutex
	current  Tuning
	onChange func(Tuning)

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
}

// NewTuningWatcher loads the file once and starts watching its directory
// for changes. onChange may be nil; path must exist at startup only if
// strict loading is wanted, otherwise defaults are served until the file
// appears.
func NewTuningWatcher(path string, logger *zap.Logger, onChange func(Tuning)) (*TuningWatcher, error) {
	current, err := LoadTuning(path)
	if err != nil {
		logger.Warn("Tuning file not loadable, serving defaults",
			zap.String("path", path),
			zap.Error(err),
		)
		current = DefaultTuning()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating tuning watcher: %w", err)
	}
	// Watch the directory, not the file: editors replace files on save
	// and a watch on the old inode would go dead.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching tuning directory: %w", err)
	}

	w := &TuningWatcher{
		path:     path,
		logger:   logger,
		onChange: onChange,
		current:  current,
		watcher:  fw,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// OnChange registers the callback invoked after each successful reload
// that changed the values. Replaces any earlier callback.
func (w *TuningWatcher) OnChange(fn func(Tuning)) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

// Current returns the latest good tuning values
func (w *TuningWatcher) Current() Tuning {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Close stops watching
func (w *TuningWatcher) Close() error {
	w.stopOnce.Do(func() { close(w.done) })
	return w.watcher.Close()
}

func (w *TuningWatcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Tuning watcher error", zap.Error(err))
		}
	}
}

func (w *TuningWatcher) reload() {
	t, err := LoadTuning(w.path)
	if err != nil {
		w.logger.Warn("Tuning reload failed, keeping previous values",
			zap.String("path", w.path),
			zap.Error(err),
		)
		return
	}

	w.mu.Lock()
	changed := t != w.current
	w.current = t
	notify := w.onChange
	w.mu.Unlock()

	if !changed {
		return
	}
	w.logger.Info("Tuning reloaded",
		zap.String("path", w.path),
		zap.Float64("nodeSpacing", t.NodeSpacing),
	)
	if notify != nil {
		notify(t)
	}
}
