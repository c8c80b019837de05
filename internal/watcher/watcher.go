// Package watcher monitors the documents directory and indexes
// supported files as they appear.
package watcher

import (
	"context"
	"log"

	"github.com/fsnotify/fsnotify"

	"ragchat/internal/service"
)

// Watcher indexes newly created or written documents. Indexing is
// idempotent, so repeated events for one file cost one build at most;
// edits to an already-indexed document do not invalidate its index.
type Watcher struct {
	ingestor *service.Ingestor
	fs       *fsnotify.Watcher
}

func New(ingestor *service.Ingestor) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{ingestor: ingestor, fs: fs}, nil
}

// Watch blocks, ingesting documents created or written under dir until
// ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	if err := w.fs.Add(dir); err != nil {
		return err
	}
	log.Printf("watcher: watching %s", dir)
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			// Editors drop temp and swap files in watched dirs;
			// skip anything the ingestor cannot read.
			if !w.ingestor.Supported(event.Name) {
				continue
			}
			if _, err := w.ingestor.Ingest(ctx, event.Name); err != nil {
				log.Printf("watcher: %s: %v", event.Name, err)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher: %v", err)
		case <-ctx.Done():
			return w.fs.Close()
		}
	}
}

func (w *Watcher) Close() error { return w.fs.Close() }
