// Package history persists reasoning graph snapshots in an embedded
// BadgerDB key-value store, keyed by graph id and version, so the full
// derivation chain of a graph stays available for diffing and auditing.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/soundprediction/cogito/pkg/types"
)

// ErrSnapshotNotFound is returned when no snapshot exists for the
// requested graph id or version.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Config holds the store configuration.
type Config struct {
	// Path is the directory for the database files. Required unless
	// InMemory is true.
	Path string
	// InMemory keeps everything in RAM, for tests and ephemeral runs.
	InMemory bool
	// SyncWrites makes every write durable before returning.
	SyncWrites bool
	// Logger receives BadgerDB's internal log output. Nil disables it.
	Logger *slog.Logger
	// GCInterval is how often value log garbage collection runs. Zero
	// disables it.
	GCInterval time.Duration
}

// DefaultConfig returns production defaults for a persistent store.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		SyncWrites: true,
		GCInterval: 5 * time.Minute,
	}
}

// InMemoryConfig returns a configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any)   { l.logger.Error(fmt.Sprintf(format, args...)) }
func (l *badgerLogger) Warningf(format string, args ...any) { l.logger.Warn(fmt.Sprintf(format, args...)) }
func (l *badgerLogger) Infof(format string, args ...any)    { l.logger.Info(fmt.Sprintf(format, args...)) }
func (l *badgerLogger) Debugf(format string, args ...any)   { l.logger.Debug(fmt.Sprintf(format, args...)) }

// Store is a snapshot archive. Snapshots are stored as JSON documents
// under snapshot/<graphID>/<version> with zero-padded versions, so a key
// scan yields versions in ascending order. The store is safe for
// concurrent use.
type Store struct {
	db     *badger.DB
	done   chan struct{}
	config Config
}

// Open creates or opens a Store with the given configuration.
func Open(config Config) (*Store, error) {
	if !config.InMemory && config.Path == "" {
		return nil, errors.New("path is required for a persistent store")
	}

	var opts badger.Options
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(config.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", config.Path, err)
		}
		opts = badger.DefaultOptions(config.Path)
	}
	opts = opts.WithSyncWrites(config.SyncWrites)
	if config.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: config.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	s := &Store{db: db, done: make(chan struct{}), config: config}
	if config.GCInterval > 0 && !config.InMemory {
		go s.runGC()
	}
	return s, nil
}

func (s *Store) runGC() {
	ticker := time.NewTicker(s.config.GCInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			for s.db.RunValueLogGC(0.5) == nil {
			}
		case <-s.done:
			return
		}
	}
}

// Close stops background work and closes the database.
func (s *Store) Close() error {
	close(s.done)
	return s.db.Close()
}

func snapshotKey(graphID string, version int) []byte {
	return []byte(fmt.Sprintf("snapshot/%s/%010d", graphID, version))
}

func snapshotPrefix(graphID string) []byte {
	return []byte("snapshot/" + graphID + "/")
}

// Append stores a snapshot under its own version.
func (s *Store) Append(ctx context.Context, graphID string, g *types.Graph) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := types.DocumentFromGraph(g).JSON()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey(graphID, g.Version()), data)
	})
	if err != nil {
		return fmt.Errorf("store snapshot %s v%d: %w", graphID, g.Version(), err)
	}
	return nil
}

// Get loads one version of a graph.
func (s *Store) Get(ctx context.Context, graphID string, version int) (*types.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(graphID, version))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s v%d", ErrSnapshotNotFound, graphID, version)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s v%d: %w", graphID, version, err)
	}
	return types.ParseJSON(data)
}

// Latest loads the highest stored version of a graph.
func (s *Store) Latest(ctx context.Context, graphID string) (*types.Graph, error) {
	versions, err := s.Versions(ctx, graphID)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, graphID)
	}
	return s.Get(ctx, graphID, versions[len(versions)-1])
}

// Versions lists the stored versions of a graph in ascending order.
func (s *Store) Versions(ctx context.Context, graphID string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := snapshotPrefix(graphID)
	var versions []int
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			v, err := strconv.Atoi(string(key[len(prefix):]))
			if err != nil {
				continue
			}
			versions = append(versions, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshot versions %s: %w", graphID, err)
	}
	return versions, nil
}

// GraphIDs lists every graph id with at least one stored snapshot.
func (s *Store) GraphIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := []byte("snapshot/")
	seen := make(map[string]struct{})
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rest := string(it.Item().Key()[len(prefix):])
			for i := 0; i < len(rest); i++ {
				if rest[i] == '/' {
					id := rest[:i]
					if _, dup := seen[id]; !dup {
						seen[id] = struct{}{}
						ids = append(ids, id)
					}
					break
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list graph ids: %w", err)
	}
	return ids, nil
}
