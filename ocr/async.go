package ocr

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryAsyncEngine runs OCR batches on background goroutines and keeps job
// state in memory. It is process-local: jobs do not survive a restart.
type MemoryAsyncEngine struct {
	engine Engine

	mu   sync.RWMutex
	jobs map[string]*memoryJob
}

// NewAsyncEngine wraps a synchronous engine with an in-memory job runner.
func NewAsyncEngine(engine Engine) *MemoryAsyncEngine {
	return &MemoryAsyncEngine{engine: engine, jobs: make(map[string]*memoryJob)}
}

func (e *MemoryAsyncEngine) Name() string {
	return e.engine.Name() + "-async"
}

// Start registers a job for the inputs and begins processing immediately. The
// supplied context only covers submission; the job itself runs on a detached
// context so it outlives the originating request.
func (e *MemoryAsyncEngine) Start(ctx context.Context, inputs []Input) (Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no inputs to recognize")
	}
	runCtx, cancel := context.WithCancel(context.Background())
	j := &memoryJob{
		id:     uuid.NewString(),
		cancel: cancel,
		status: JobStatus{State: JobStatePending},
	}
	e.mu.Lock()
	e.jobs[j.id] = j
	e.mu.Unlock()

	go e.process(runCtx, j, inputs)
	return j, nil
}

// Job returns a previously started job by ID.
func (e *MemoryAsyncEngine) Job(id string) (Job, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	j, ok := e.jobs[id]
	return j, ok
}

// Forget drops a terminal job from the store. Running jobs are kept.
func (e *MemoryAsyncEngine) Forget(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if j, ok := e.jobs[id]; ok && j.snapshot().State.Terminal() {
		delete(e.jobs, id)
	}
}

func (e *MemoryAsyncEngine) process(ctx context.Context, j *memoryJob, inputs []Input) {
	defer j.cancel()
	j.setState(JobStateRunning, "", 0)

	results := make([]Result, 0, len(inputs))
	for i, in := range inputs {
		select {
		case <-ctx.Done():
			j.setState(JobStateCanceled, "canceled", float64(i)/float64(len(inputs)))
			return
		default:
		}
		res, err := e.engine.Recognize(ctx, in)
		if err != nil {
			if ctx.Err() != nil {
				j.setState(JobStateCanceled, "canceled", float64(i)/float64(len(inputs)))
				return
			}
			j.setState(JobStateFailed, fmt.Sprintf("recognize %s: %v", in.ID, err), float64(i)/float64(len(inputs)))
			return
		}
		results = append(results, res)
		j.setState(JobStateRunning, "", float64(i+1)/float64(len(inputs)))
	}
	j.finish(results)
}

type memoryJob struct {
	id     string
	cancel context.CancelFunc

	mu      sync.RWMutex
	status  JobStatus
	results []Result
}

func (j *memoryJob) ID() string { return j.id }

func (j *memoryJob) Status(ctx context.Context) (JobStatus, error) {
	if err := ctx.Err(); err != nil {
		return JobStatus{}, err
	}
	return j.snapshot(), nil
}

func (j *memoryJob) Results(ctx context.Context) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	switch j.status.State {
	case JobStateSucceeded:
		return append([]Result(nil), j.results...), nil
	case JobStateFailed:
		return nil, fmt.Errorf("job failed: %s", j.status.Message)
	case JobStateCanceled:
		return nil, fmt.Errorf("job canceled")
	default:
		return nil, fmt.Errorf("job not finished")
	}
}

func (j *memoryJob) Cancel(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	j.mu.Lock()
	terminal := j.status.State.Terminal()
	j.mu.Unlock()
	if terminal {
		return nil
	}
	j.cancel()
	return nil
}

func (j *memoryJob) snapshot() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

func (j *memoryJob) setState(state JobState, msg string, progress float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.State.Terminal() {
		return
	}
	j.status = JobStatus{State: state, Message: msg, Progress: progress}
}

func (j *memoryJob) finish(results []Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.State.Terminal() {
		return
	}
	j.results = results
	j.status = JobStatus{State: JobStateSucceeded, Progress: 1}
}
