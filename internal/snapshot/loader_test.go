package snapshot

import (
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-recommender/internal/records"
)

func TestLoaderMemoizesPerSource(t *testing.T) {
	t.Parallel()

	calls := map[string]int{}
	loader := NewLoader(zap.NewNop())
	loader.load = func(source string) (*records.Tables, error) {
		calls[source]++
		return fixtureTables(), nil
	}

	first, err := loader.Load("a.json.gz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := loader.Load("a.json.gz")
	if first != second {
		t.Fatalf("expected the cached tables to be returned")
	}
	if _, err := loader.Load("b.json.gz"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls["a.json.gz"] != 1 || calls["b.json.gz"] != 1 {
		t.Fatalf("unexpected load calls: %v", calls)
	}

	loader.Forget("a.json.gz")
	if _, err := loader.Load("a.json.gz"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls["a.json.gz"] != 2 {
		t.Fatalf("expected reload after forget, got %d calls", calls["a.json.gz"])
	}
}

func TestLoaderDoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	loader := NewLoader(zap.New(core))

	path := filepath.Join(t.TempDir(), "snapshot.json.gz")
	if _, err := loader.Load(path); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := Save(path, fixtureTables()); err != nil {
		t.Fatalf("save: %v", err)
	}

	tables, err := loader.Load(path)
	if err != nil {
		t.Fatalf("expected the new snapshot to load, got %v", err)
	}
	if tables.Jobs.Len() != 2 {
		t.Fatalf("expected 2 jobs, got %d", tables.Jobs.Len())
	}

	if entries := observed.FilterMessage("snapshot loaded").All(); len(entries) != 1 {
		t.Fatalf("expected one load log entry, got %d", len(entries))
	}
}
