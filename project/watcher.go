package project

import (
	"context"
	"os"
	"time"
)

// Watcher polls a set of files and reports the ones that changed since the
// previous poll.
type Watcher struct {
	files        func() ([]string, error)
	pollInterval time.Duration
	modTimes     map[string]time.Time
}

// NewWatcher watches the files returned by files, which is called again on
// every poll so new files are picked up.
func NewWatcher(files func() ([]string, error), pollInterval time.Duration) *Watcher {
	return &Watcher{
		files:        files,
		pollInterval: pollInterval,
		modTimes:     make(map[string]time.Time),
	}
}

// Watch is NewWatcher over the project's include patterns. Reported paths
// are resolved against the root.
func (p *Project) Watch(pollInterval time.Duration) *Watcher {
	return NewWatcher(func() ([]string, error) {
		names, err := p.Files()
		if err != nil {
			return nil, err
		}
		for i, name := range names {
			names[i] = p.Path(name)
		}
		return names, nil
	}, pollInterval)
}

// Run polls until ctx is done and calls fn for every poll that found
// changes. The first poll only records the current state.
func (w *Watcher) Run(ctx context.Context, fn func(changed, removed []string)) error {
	if _, _, err := w.Scan(); err != nil {
		return err
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			changed, removed, err := w.Scan()
			if err != nil {
				log.Errorf("watch: %s", err)
				continue
			}
			if len(changed) > 0 || len(removed) > 0 {
				fn(changed, removed)
			}
		}
	}
}

// Scan polls once. Files seen for the first time count as changed.
func (w *Watcher) Scan() (changed, removed []string, err error) {
	files, err := w.files()
	if err != nil {
		return nil, nil, err
	}

	current := make(map[string]bool, len(files))
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		current[path] = true

		lastMod, known := w.modTimes[path]
		if !known || info.ModTime().After(lastMod) {
			w.modTimes[path] = info.ModTime()
			changed = append(changed, path)
		}
	}

	for path := range w.modTimes {
		if !current[path] {
			delete(w.modTimes, path)
			removed = append(removed, path)
		}
	}
	return changed, removed, nil
}
