package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/taxlens/internal/model"
	"github.com/ppiankov/taxlens/internal/registry"
)

// MockAnalyzer implements Analyzer
type MockAnalyzer struct {
	calls   atomic.Int32
	failIDs map[string]bool
	panicID string
	delay   func(id string) time.Duration
}

func (m *MockAnalyzer) AnalyzeEntry(ctx context.Context, entry registry.Entry) (*model.Report, error) {
	m.calls.Add(1)
	if m.delay != nil {
		time.Sleep(m.delay(entry.ID))
	}
	if entry.ID == m.panicID {
		panic("boom")
	}
	if m.failIDs[entry.ID] {
		return nil, errors.New("analysis failed")
	}
	return &model.Report{FileID: entry.ID}, nil
}

func entries(ids ...string) []registry.Entry {
	out := make([]registry.Entry, len(ids))
	for i, id := range ids {
		out[i] = registry.Entry{ID: id, Path: id + ".txt"}
	}
	return out
}

func TestBatchProcessor_Process_ManifestOrder(t *testing.T) {
	// Earlier entries finish last
	analyzer := &MockAnalyzer{delay: func(id string) time.Duration {
		switch id {
		case "a":
			return 30 * time.Millisecond
		case "b":
			return 15 * time.Millisecond
		}
		return 0
	}}
	processor := NewBatchProcessor(analyzer, 3)

	results := processor.Process(context.Background(), entries("a", "b", "c", "d"))

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, want := range []string{"a", "b", "c", "d"} {
		if results[i].Entry.ID != want || results[i].Report == nil || results[i].Report.FileID != want {
			t.Errorf("result %d: expected %s, got %+v", i, want, results[i])
		}
		if results[i].Index != i {
			t.Errorf("result %d: expected index %d, got %d", i, i, results[i].Index)
		}
	}
}

func TestBatchProcessor_Process_Errors(t *testing.T) {
	analyzer := &MockAnalyzer{failIDs: map[string]bool{"b": true}, panicID: "c"}
	processor := NewBatchProcessor(analyzer, 2)

	results := processor.Process(context.Background(), entries("a", "b", "c", "d"))

	if results[0].GetError() != nil || results[3].GetError() != nil {
		t.Error("expected a and d to succeed")
	}
	if results[1].GetError() == nil {
		t.Error("expected b to fail")
	}
	if results[2].GetError() == nil {
		t.Error("expected panicking entry to fail")
	}
	if analyzer.calls.Load() != 4 {
		t.Errorf("expected 4 calls, got %d", analyzer.calls.Load())
	}
}

func TestBatchProcessor_Process_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockAnalyzer{}, 2)
	results := processor.Process(context.Background(), nil)
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil results, got %v", results)
	}
}

func TestBatchProcessor_Process_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&MockAnalyzer{}, 1)
	results := processor.Process(ctx, entries("a", "b", "c", "d", "e", "f"))

	if len(results) != 6 {
		t.Fatalf("expected a result per entry, got %d", len(results))
	}
	for i, r := range results {
		if r == nil {
			t.Fatalf("result %d is nil", i)
		}
		if r.Entry.ID == "" {
			t.Errorf("result %d lost its entry", i)
		}
	}
}

func TestAnalyzeResult_GetError(t *testing.T) {
	err := errors.New("test error")
	r := &AnalyzeResult{Error: err}
	if r.GetError() != err {
		t.Errorf("expected error %v, got %v", err, r.GetError())
	}
}

func TestBatchProcessor_ProcessManifest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"w2.txt", "bill.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	manifest := "documents:\n  - id: w2\n    path: w2.txt\n  - id: bill\n    path: bill.txt\n"
	path := filepath.Join(dir, "manifest.yaml")
	if err := os.WriteFile(path, []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}

	processor := NewBatchProcessor(&MockAnalyzer{}, 2)
	results, err := processor.ProcessManifest(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessManifest failed: %v", err)
	}
	if len(results) != 2 || results[0].Entry.ID != "w2" || results[1].Entry.ID != "bill" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestBatchProcessor_ProcessManifest_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&MockAnalyzer{}, 2)
	if _, err := processor.ProcessManifest(context.Background(), "/nonexistent/manifest.yaml"); err == nil {
		t.Error("expected error for missing manifest")
	}
}

func TestBatchProcessor_OnProgress(t *testing.T) {
	analyzer := &MockAnalyzer{failIDs: map[string]bool{"b": true}}

	var counts []int
	var failed []string
	processor := NewBatchProcessor(analyzer, 2).OnProgress(func(done, total int, r *AnalyzeResult) {
		if total != 3 {
			t.Errorf("expected total 3, got %d", total)
		}
		counts = append(counts, done)
		if r.Error != nil {
			failed = append(failed, r.Entry.ID)
		}
	})

	processor.Process(context.Background(), entries("a", "b", "c"))

	if len(counts) != 3 || counts[0] != 1 || counts[2] != 3 {
		t.Errorf("expected progress 1..3, got %v", counts)
	}
	if len(failed) != 1 || failed[0] != "b" {
		t.Errorf("expected b reported as failed, got %v", failed)
	}
}
