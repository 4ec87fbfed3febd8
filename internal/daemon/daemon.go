// internal/daemon/daemon.go
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/mgr01/openhab-js/internal/compile"
	"github.com/mgr01/openhab-js/internal/config"
	"github.com/mgr01/openhab-js/internal/engine"
	"github.com/mgr01/openhab-js/internal/logging"
	"github.com/mgr01/openhab-js/internal/security"
	"github.com/mgr01/openhab-js/internal/state"
)

// Daemon compiles a rules directory into the registry and keeps it in sync
type Daemon struct {
	config   *config.Global
	rulesDir string
	registry *state.DB
	logger   *slog.Logger
	rules    map[string]*engine.Rule // compiled rules keyed by source path
	mu       sync.RWMutex
}

// New creates a daemon for rulesDir. registry may be nil to compile without storing.
func New(cfg *config.Global, rulesDir string, registry *state.DB, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Daemon{
		config:   cfg,
		rulesDir: rulesDir,
		registry: registry,
		logger:   logger,
		rules:    make(map[string]*engine.Rule),
	}
}

// ReloadResult summarizes one pass over the rules directory
type ReloadResult struct {
	Compiled int
	Skipped  int
	Pruned   int64
	Failed   map[string]error // keyed by source path
}

// Run compiles the rules directory once and then recompiles on changes
// until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	d.logger.Info("starting rule watcher", "rules_dir", d.rulesDir)
	if err := security.ValidateDirectoryPermissions(d.rulesDir); err != nil {
		d.logger.Warn("unsafe rules directory", "error", err)
	}

	res, err := d.Reload()
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}
	d.logger.Info("rules compiled", "compiled", res.Compiled, "failed", len(res.Failed), "skipped", res.Skipped)

	return d.watch(ctx)
}

// sourceUID derives a stable UID for rules that do not declare one
func sourceUID(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+abs)).String()
}

// Reload compiles every rule file and stores the results in the registry.
// A file that fails to compile keeps its previously compiled rule.
func (d *Daemon) Reload() (*ReloadResult, error) {
	files, err := config.LoadRulesDir(d.rulesDir)
	if err != nil {
		return nil, err
	}

	res := &ReloadResult{Failed: make(map[string]error)}
	compiled := make(map[string]*engine.Rule)

	d.mu.RLock()
	previous := d.rules
	d.mu.RUnlock()

	for _, f := range files {
		logger := logging.WithSource(d.logger, f.Path)
		if err := security.ValidateFilePermissions(f.Path); err != nil {
			logger.Warn("unsafe rule file", "error", err)
		}
		if !f.Rule.IsEnabled() {
			logger.Debug("skipping disabled rule", "rule", f.Rule.Name)
			res.Skipped++
			continue
		}
		if f.Rule.UID == "" {
			f.Rule.UID = sourceUID(f.Path)
		}

		rule, err := compile.Rule(f.Rule, logger)
		if err != nil {
			logger.Error("failed to compile rule", "error", err)
			res.Failed[f.Path] = err
			if prev, ok := previous[f.Path]; ok {
				compiled[f.Path] = prev
			}
			continue
		}

		if d.registry != nil {
			if err := d.registry.SaveRule(state.NewRecord(rule, f.Path)); err != nil {
				logger.Error("failed to store rule", "rule", rule.Name, "error", err)
				res.Failed[f.Path] = err
				continue
			}
		}
		compiled[f.Path] = rule
		res.Compiled++
		logger.Debug("compiled rule", "rule", rule.Name, "uid", rule.UID, "triggers", len(rule.Triggers))
	}

	if d.registry != nil && d.config.Watch.PruneRemoved {
		keep := make([]string, 0, len(compiled))
		for _, r := range compiled {
			keep = append(keep, r.UID)
		}
		pruned, err := d.registry.PruneExcept(keep)
		if err != nil {
			d.logger.Warn("failed to prune registry", "error", err)
		} else if pruned > 0 {
			d.logger.Info("pruned removed rules", "pruned", pruned)
		}
		res.Pruned = pruned
	}

	d.mu.Lock()
	d.rules = compiled
	d.mu.Unlock()

	return res, nil
}

// Rules returns the currently compiled rules ordered by name
func (d *Daemon) Rules() []*engine.Rule {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*engine.Rule, 0, len(d.rules))
	for _, r := range d.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (d *Daemon) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating rules watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(d.rulesDir); err != nil {
		return fmt.Errorf("watching rules directory: %w", err)
	}

	debounce := time.Duration(d.config.Watch.DebounceMillis) * time.Millisecond
	var debounceTimer *time.Timer
	debounceCh := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !config.IsRuleFile(event.Name) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				select {
				case debounceCh <- struct{}{}:
				default:
				}
			})

		case <-debounceCh:
			res, err := d.Reload()
			if err != nil {
				d.logger.Error("failed to reload rules", "error", err)
				continue
			}
			d.logger.Info("rules reloaded", "compiled", res.Compiled, "failed", len(res.Failed), "skipped", res.Skipped)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			d.logger.Error("rules watcher error", "error", err)

		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			d.logger.Info("rule watcher stopped")
			return nil
		}
	}
}
