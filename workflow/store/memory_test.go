package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/ssoriche/prioflow/workflow/store"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	cp := &store.Checkpoint{
		WorkflowID:  "wf-1",
		CurrentStep: 3,
		State:       store.StateRunning,
		ContextData: store.ContextData{
			Data:    map[string]any{"count": float64(42), "label": "x"},
			Request: map[string]any{"user_id": float64(7)},
		},
		Metadata: map[string]any{"step_name": "s3"},
	}

	if err := s.Save(ctx, cp); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := s.Load(ctx, "wf-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a checkpoint, got nil")
	}
	if loaded.State != store.StateRunning || loaded.CurrentStep != 3 {
		t.Fatalf("round-trip mismatch: %+v", loaded)
	}
	if loaded.ContextData.Data["count"] != float64(42) {
		t.Fatalf("round-trip lost data: %+v", loaded.ContextData)
	}

	// Mutating the returned checkpoint must not corrupt the store's copy.
	loaded.ContextData.Data["count"] = float64(99)
	reloaded, err := s.Load(ctx, "wf-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reloaded.ContextData.Data["count"] != float64(42) {
		t.Fatalf("store did not defensively copy on Load: %+v", reloaded.ContextData)
	}
}

func TestMemoryStoreUpsertOverwrites(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	if err := s.Save(ctx, &store.Checkpoint{WorkflowID: "wf-1", CurrentStep: 0, State: store.StateRunning}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, &store.Checkpoint{WorkflowID: "wf-1", CurrentStep: 1, State: store.StatePaused}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := s.Load(ctx, "wf-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.CurrentStep != 1 || loaded.State != store.StatePaused {
		t.Fatalf("expected upsert to overwrite, got %+v", loaded)
	}
}

func TestMemoryStoreIdempotentDelete(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	if err := s.Delete(ctx, "never-existed"); err != nil {
		t.Fatalf("expected deleting a missing id to succeed, got %v", err)
	}

	if err := s.Save(ctx, &store.Checkpoint{WorkflowID: "wf-1", State: store.StateRunning}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete(ctx, "wf-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "wf-1"); err != nil {
		t.Fatalf("expected second delete to also succeed, got %v", err)
	}

	loaded, err := s.Load(ctx, "wf-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected no checkpoint after delete, got %+v", loaded)
	}
}

func TestMemoryStoreLoadMissingIsNotError(t *testing.T) {
	s := store.NewMemoryStore()
	loaded, err := s.Load(context.Background(), "missing")
	if err != nil {
		t.Fatalf("expected no error for a missing id, got %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected nil checkpoint, got %+v", loaded)
	}
}

func TestMemoryStoreSetsUpdatedAt(t *testing.T) {
	s := store.NewMemoryStore()
	before := time.Now()
	if err := s.Save(context.Background(), &store.Checkpoint{WorkflowID: "wf-1", State: store.StateRunning}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := s.Load(context.Background(), "wf-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.UpdatedAt.Before(before) {
		t.Fatalf("expected UpdatedAt to be set at save time, got %v", loaded.UpdatedAt)
	}
}
