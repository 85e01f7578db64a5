package workers

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakePruner struct {
	cutoffs []int64
	err     error
}

func (f *fakePruner) DeleteOlderThan(_ context.Context, ts int64) (int64, error) {
	f.cutoffs = append(f.cutoffs, ts)
	return 3, f.err
}

func TestPruneDeliveries(t *testing.T) {
	repo := &fakePruner{}
	now := time.Unix(1700000000, 0)

	deleted, err := PruneDeliveries(context.Background(), repo, time.Hour, now)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Expected 3 deleted, got %d", deleted)
	}
	if len(repo.cutoffs) != 1 || repo.cutoffs[0] != 1700000000-3600 {
		t.Errorf("Unexpected cutoff %v", repo.cutoffs)
	}

	repo.err = errors.New("locked")
	if _, err := PruneDeliveries(context.Background(), repo, time.Hour, now); err == nil {
		t.Error("Expected error to be returned")
	}
}

func TestRunPruner_StopsOnCancel(t *testing.T) {
	repo := &fakePruner{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		RunPruner(ctx, repo, time.Hour, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunPruner did not stop")
	}
}
