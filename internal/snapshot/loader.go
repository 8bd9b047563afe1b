package snapshot

import (
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/records"
)

// Loader memoizes successful loads per source path. Failed loads are not cached,
// so a snapshot created later is picked up by the next call.
type Loader struct {
	logger *zap.Logger
	load   func(string) (*records.Tables, error)

	mu    sync.Mutex
	cache map[string]*records.Tables
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Loader{
		logger: logger,
		load:   Load,
		cache:  make(map[string]*records.Tables),
	}
}

// Load returns the cached tables for source or reads them from disk.
func (l *Loader) Load(source string) (*records.Tables, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if tables, ok := l.cache[source]; ok {
		l.logger.Debug("snapshot served from cache", zap.String("source", source))
		return tables, nil
	}

	tables, err := l.load(source)
	if err != nil {
		return nil, err
	}

	l.logger.Info("snapshot loaded",
		zap.String("source", source),
		zap.Int("applicants", tables.Applicants.Len()),
		zap.Int("jobs", tables.Jobs.Len()),
	)

	l.cache[source] = tables
	return tables, nil
}

// Forget drops the cached tables of source.
func (l *Loader) Forget(source string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.cache, source)
}
