package ocr

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// blockingEngine holds each Recognize call until released.
type blockingEngine struct {
	release  chan struct{}
	started  chan struct{}
	startOne sync.Once
}

func newBlockingEngine() *blockingEngine {
	return &blockingEngine{release: make(chan struct{}), started: make(chan struct{})}
}

func (b *blockingEngine) Name() string { return "blocking" }

func (b *blockingEngine) Recognize(ctx context.Context, in Input) (Result, error) {
	b.startOne.Do(func() { close(b.started) })
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-b.release:
		return Result{InputID: in.ID}, nil
	}
}

func waitForState(t *testing.T, j Job, want JobState) JobStatus {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		st, err := j.Status(context.Background())
		if err != nil {
			t.Fatalf("Status() error = %v", err)
		}
		if st.State == want {
			return st
		}
		if st.State.Terminal() {
			t.Fatalf("job reached terminal state %s waiting for %s (%s)", st.State, want, st.Message)
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for state %s, last %s", want, st.State)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestAsyncEngineSucceeds(t *testing.T) {
	async := NewAsyncEngine(&fakeEngine{name: "fake"})
	j, err := async.Start(context.Background(), []Input{{ID: "a", Page: 0}, {ID: "b", Page: 1}})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	st := waitForState(t, j, JobStateSucceeded)
	if st.Progress != 1 {
		t.Fatalf("expected progress 1, got %f", st.Progress)
	}
	results, err := j.Results(context.Background())
	if err != nil {
		t.Fatalf("Results() error = %v", err)
	}
	if len(results) != 2 || results[1].InputID != "b" {
		t.Fatalf("unexpected results: %+v", results)
	}

	got, ok := async.Job(j.ID())
	if !ok || got.ID() != j.ID() {
		t.Fatal("job not retrievable by id")
	}
}

func TestAsyncEngineFailure(t *testing.T) {
	async := NewAsyncEngine(&fakeEngine{name: "fake", fail: map[string]error{"b": errors.New("boom")}})
	j, err := async.Start(context.Background(), []Input{{ID: "a"}, {ID: "b"}})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	waitForState(t, j, JobStateFailed)
	if _, err := j.Results(context.Background()); err == nil {
		t.Fatal("Results() must fail for a failed job")
	}
}

func TestAsyncEngineCancel(t *testing.T) {
	eng := newBlockingEngine()
	async := NewAsyncEngine(eng)
	j, err := async.Start(context.Background(), []Input{{ID: "a"}, {ID: "b"}})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	<-eng.started
	if err := j.Cancel(context.Background()); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	waitForState(t, j, JobStateCanceled)
	if _, err := j.Results(context.Background()); err == nil {
		t.Fatal("Results() must fail for a canceled job")
	}
}

func TestAsyncEngineRejectsEmptyBatch(t *testing.T) {
	async := NewAsyncEngine(&fakeEngine{name: "fake"})
	if _, err := async.Start(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty batch")
	}
}

func TestForgetOnlyDropsTerminalJobs(t *testing.T) {
	eng := newBlockingEngine()
	async := NewAsyncEngine(eng)
	j, err := async.Start(context.Background(), []Input{{ID: "a"}})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	<-eng.started

	async.Forget(j.ID())
	if _, ok := async.Job(j.ID()); !ok {
		t.Fatal("running job must not be forgotten")
	}

	close(eng.release)
	waitForState(t, j, JobStateSucceeded)
	async.Forget(j.ID())
	if _, ok := async.Job(j.ID()); ok {
		t.Fatal("terminal job should be forgotten")
	}
}
