package watcher

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/codeqa/engine/internal/indexer"
	"github.com/codeqa/engine/internal/project"
)

// Manager keys active watches by canonical project root, enforcing at most
// one watcher per root and idempotent stop.
type Manager struct {
	updater *indexer.Indexer
	opts    Options

	mu       sync.Mutex
	watchers map[string]*managedWatch
}

type managedWatch struct {
	hybrid *HybridWatcher
	cancel context.CancelFunc
}

// NewManager constructs a Manager that drives updater on every debounced
// batch of eligible changes.
func NewManager(updater *indexer.Indexer, opts Options) *Manager {
	return &Manager{
		updater:  updater,
		opts:     opts,
		watchers: make(map[string]*managedWatch),
	}
}

// Watch starts watching root, keyed by its canonical path. Watching an
// already-watched root is a no-op and returns the canonical root.
func (m *Manager) Watch(ctx context.Context, root string) (string, error) {
	canonical, err := project.Canonicalize(root)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	if _, exists := m.watchers[canonical]; exists {
		m.mu.Unlock()
		return canonical, nil
	}

	hw, err := NewHybridWatcher(m.opts)
	if err != nil {
		m.mu.Unlock()
		return "", err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	m.watchers[canonical] = &managedWatch{hybrid: hw, cancel: cancel}
	m.mu.Unlock()

	go m.drive(watchCtx, canonical, hw)

	go func() {
		if err := hw.Start(watchCtx, canonical); err != nil && watchCtx.Err() == nil {
			slog.Warn("watcher stopped unexpectedly", slog.String("root", canonical), slog.String("error", err.Error()))
		}
	}()

	return canonical, nil
}

// drive consumes hw's debounced batches and triggers an incremental update.
// A callback (update) failure is logged and never stops the watcher.
func (m *Manager) drive(ctx context.Context, canonical string, hw *HybridWatcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-hw.Events():
			if !ok {
				return
			}
			if !hasEligibleChange(batch) {
				continue
			}
			if _, err := m.updater.UpdateIndex(ctx, canonical); err != nil {
				slog.Warn("incremental update failed", slog.String("root", canonical), slog.String("error", err.Error()))
			}
		case err, ok := <-hw.Errors():
			if !ok {
				return
			}
			slog.Warn("watcher error", slog.String("root", canonical), slog.String("error", err.Error()))
		}
	}
}

// hasEligibleChange reports whether batch contains at least one file-level
// event; directory-only batches (mkdir with no files yet) need no update.
func hasEligibleChange(batch []FileEvent) bool {
	for _, e := range batch {
		if !e.IsDir {
			return true
		}
	}
	return false
}

// Unwatch stops the watcher for root, if any. Stopping an unwatched or
// already-stopped root is a no-op.
func (m *Manager) Unwatch(root string) error {
	canonical, err := project.Canonicalize(root)
	if err != nil {
		canonical = root
	}

	m.mu.Lock()
	w, exists := m.watchers[canonical]
	if exists {
		delete(m.watchers, canonical)
	}
	m.mu.Unlock()

	if !exists {
		return nil
	}

	w.cancel()
	return w.hybrid.Stop()
}

// ActiveRoots returns the canonical roots of every currently active
// watcher, sorted for deterministic output.
func (m *Manager) ActiveRoots() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	roots := make([]string, 0, len(m.watchers))
	for root := range m.watchers {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots
}

// Watching reports whether root currently has an active watcher.
func (m *Manager) Watching(root string) bool {
	canonical, err := project.Canonicalize(root)
	if err != nil {
		canonical = root
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.watchers[canonical]
	return exists
}
