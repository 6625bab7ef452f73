package rates

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/adnanrafiq/finledger/ledger"
)

// Watcher re-applies a rates file to the ledger whenever it changes.
type Watcher struct {
	Path    string
	Service *ledger.Service
	Log     zerolog.Logger
}

// Run watches the rates file until the context is cancelled. The file is
// applied once on start, then on every change.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(w.Path); err != nil {
		_ = watcher.Close()
		return err
	}

	w.apply(ctx)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = watcher.Close()
	}()

	// Debounce - editors often write files in multiple steps.
	const debounceDelay = 100 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// Remove/Rename are common in atomic saves.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				w.apply(ctx)
				// Re-add in case the file was replaced atomically.
				_ = watcher.Add(w.Path)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.Log.Error().Err(err).Msg("rates file watcher error")
		}
	}
}

func (w *Watcher) apply(ctx context.Context) {
	file, err := Load(w.Path)
	if err != nil {
		w.Log.Error().Err(err).Str("path", w.Path).Msg("failed to load rates file")
		return
	}

	changed, err := Apply(ctx, w.Service, file)
	if err != nil {
		w.Log.Error().Err(err).Msg("failed to apply rates file")
		return
	}
	if len(changed) > 0 {
		w.Log.Info().Strs("currencies", changed).Msg("exchange rates applied from file")
	}
}
