package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cookie-jar-solutions/honey/pkg/hny"
	"github.com/fsnotify/fsnotify"
)

const debounce = 100 * time.Millisecond

// Watch implements ports.Watchable.
// The store reloads itself before signaling, so readers see the new contents
// as soon as they receive from the channel.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}

	dirs, err := s.walkDirs()
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to list prompt directories: %w", err)
	}
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", d, err)
		}
	}

	ch := make(chan struct{}, 1)
	go s.watchLoop(ctx, w, ch)
	return ch, nil
}

func (s *Store) watchLoop(ctx context.Context, w *fsnotify.Watcher, ch chan<- struct{}) {
	defer close(ch)
	defer w.Close()

	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case evt, ok := <-w.Events:
			if !ok {
				return
			}
			if evt.Has(fsnotify.Create) {
				if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
					if err := w.Add(evt.Name); err != nil {
						s.logger.Warn("Failed to watch new directory", "dir", evt.Name, "err", err)
					}
					continue
				}
			}
			if !relevant(evt) {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Warn("Prompt watcher error", "err", err)

		case <-timer.C:
			if err := s.Reload(); err != nil {
				s.logger.Error("Failed to reload prompts", "err", err)
				continue
			}
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

func relevant(evt fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(evt.Name), hny.Ext) {
		return false
	}
	return evt.Has(fsnotify.Write) || evt.Has(fsnotify.Create) || evt.Has(fsnotify.Remove) || evt.Has(fsnotify.Rename)
}
