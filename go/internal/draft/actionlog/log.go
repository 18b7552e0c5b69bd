package actionlog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mcdev12/auctiondraft/go/internal/docstore"
)

// Log is the append-only audit journal. It is never read back to rebuild draft state.
type Log struct {
	store docstore.Store[Document]
	mu    sync.Mutex
}

// New returns a log persisted through store.
func New(store docstore.Store[Document]) *Log {
	return &Log{store: store}
}

// Append loads the current document, appends entry and saves it back.
// A log that exists but does not parse is reported, never overwritten.
func (l *Log) Append(ctx context.Context, entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc, err := l.load(ctx)
	if err != nil {
		return err
	}
	doc.Entries = append(doc.Entries, entry)
	if err := l.store.Save(ctx, doc); err != nil {
		return fmt.Errorf("failed to save action log: %w", err)
	}
	return nil
}

// Entries returns every entry in append order.
func (l *Log) Entries(ctx context.Context) ([]Entry, error) {
	doc, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

func (l *Log) load(ctx context.Context) (Document, error) {
	doc, err := l.store.Load(ctx)
	if errors.Is(err, docstore.ErrNotFound) {
		return Document{Entries: []Entry{}}, nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to load action log: %w", err)
	}
	if doc.Entries == nil {
		doc.Entries = []Entry{}
	}
	return doc, nil
}
