// Package journal contains a file-backed [domain.Journal] implementation: an
// append-only datafile of applied store mutations, one JSON entry per line,
// guarded by a cross-process file lock.
package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"sync"

	"github.com/dolmen-go/contextio"
	"github.com/gofrs/flock"

	"github.com/vinicius-lino-figueiredo/docmap/domain"
)

// ErrLocked is returned when the journal datafile is held by another
// process.
var ErrLocked = errors.New("journal datafile is locked by another process")

// Journal implements [domain.Journal].
type Journal struct {
	path     string
	fileMode os.FileMode
	lock     *flock.Flock

	mu sync.Mutex
}

// NewJournal returns a new file-backed implementation of [domain.Journal].
// The datafile lock is acquired immediately and held until [Journal.Close].
func NewJournal(path string, options ...Option) (*Journal, error) {
	j := &Journal{
		path:     path,
		fileMode: 0o600,
		lock:     flock.New(path + ".lock"),
	}
	for _, option := range options {
		option(j)
	}

	locked, err := j.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking journal: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return j, nil
}

// Record implements [domain.Journal]. Entries are flushed to storage before
// returning so a crash never loses an acknowledged mutation.
func (j *Journal) Record(ctx context.Context, entry domain.JournalEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding journal entry: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, j.fileMode)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	w := contextio.NewWriter(ctx, f)
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("appending journal entry: %w", err)
	}
	return f.Sync()
}

// Replay implements [domain.Journal]. A missing datafile replays as an empty
// journal.
func (j *Journal) Replay(ctx context.Context) iter.Seq2[domain.JournalEntry, error] {
	return func(yield func(domain.JournalEntry, error) bool) {
		f, err := os.Open(j.path)
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		if err != nil {
			yield(domain.JournalEntry{}, fmt.Errorf("opening journal: %w", err))
			return
		}
		defer f.Close()

		scanner := bufio.NewScanner(contextio.NewReader(ctx, f))
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var entry domain.JournalEntry
			if err := json.Unmarshal(line, &entry); err != nil {
				yield(domain.JournalEntry{}, fmt.Errorf("decoding journal entry: %w", err))
				return
			}
			if !yield(entry, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(domain.JournalEntry{}, fmt.Errorf("reading journal: %w", err))
		}
	}
}

// Drop implements [domain.Journal].
func (j *Journal) Drop() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	err := os.Remove(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Close implements [domain.Journal].
func (j *Journal) Close() error {
	return j.lock.Unlock()
}
