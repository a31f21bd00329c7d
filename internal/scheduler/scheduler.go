package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/lexfield/docpipe/constants"
	"github.com/lexfield/docpipe/internal/common"
	"github.com/lexfield/docpipe/internal/pipeline"
)

// Job is one document admitted for background processing.
type Job struct {
	DocumentID  string
	FilePath    string
	MimeType    string
	Options     pipeline.Options
	SubmittedAt time.Time
}

// DocumentProcessor runs one document end to end. Satisfied by
// *pipeline.Processor.
type DocumentProcessor interface {
	Process(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// StatusStore records job status transitions. Implementations must tolerate
// repeated writes for the same document.
type StatusStore interface {
	SetStatus(ctx context.Context, documentID string, status constants.JobStatus, errMsg string) error
}

// CompletionHandler is invoked after each job finishes, success or failure.
// Called from the worker goroutine; keep it fast.
type CompletionHandler func(documentID string, res *pipeline.Result, err error)

// Scheduler admits jobs in FIFO order and runs them on a fixed worker pool.
// Admission order is preserved; completion order is not. By default outcomes
// are held in memory until collected; see WithoutRetention.
type Scheduler struct {
	proc    DocumentProcessor
	logger  *slog.Logger
	workers int
	timeout time.Duration
	status  StatusStore
	onDone  CompletionHandler
	retain  bool

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	// mu guards admission and close; workers must never take it, or a
	// producer parked on a full queue would starve the drain
	mu     sync.Mutex
	closed bool

	resMu   sync.Mutex
	results map[string]*pipeline.Result
	errs    map[string]error
}

type Option func(*Scheduler)

func WithWorkers(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.ch = make(chan Job, n)
		}
	}
}
func WithJobTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}
func WithStatusStore(store StatusStore) Option {
	return func(s *Scheduler) { s.status = store }
}
func WithCompletionHandler(h CompletionHandler) Option {
	return func(s *Scheduler) { s.onDone = h }
}

// WithoutRetention disables in-memory outcome storage. Long-running
// schedulers whose consumers react through a CompletionHandler instead of
// Collect should set this, or finished jobs accumulate for the process
// lifetime.
func WithoutRetention() Option {
	return func(s *Scheduler) { s.retain = false }
}

func NewScheduler(proc DocumentProcessor, logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		proc:    proc,
		logger:  logger,
		workers: 2,
		timeout: 10 * time.Minute,
		retain:  true,
		ch:      make(chan Job, 64),
		results: make(map[string]*pipeline.Result),
		errs:    make(map[string]error),
	}
	for _, o := range opts {
		o(s)
	}
	s.start()
	return s
}

func (s *Scheduler) start() {
	s.once.Do(func() {
		for i := 0; i < s.workers; i++ {
			s.wg.Add(1)
			go func(workerID int) {
				defer s.wg.Done()
				s.logger.Info("worker started", "worker_id", workerID)

				for job := range s.ch {
					s.runJob(workerID, job)
				}

				s.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (s *Scheduler) runJob(workerID int, job Job) {
	s.setStatus(job.DocumentID, constants.JobStatusRunning, "")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	res, err := s.proc.Process(ctx, pipeline.Request{
		DocumentID: job.DocumentID,
		FilePath:   job.FilePath,
		MimeType:   job.MimeType,
		Options:    job.Options,
	})
	cancel()

	if s.retain {
		s.resMu.Lock()
		if err != nil {
			s.errs[job.DocumentID] = err
		} else {
			s.results[job.DocumentID] = res
		}
		s.resMu.Unlock()
	}

	if err != nil {
		s.setStatus(job.DocumentID, constants.JobStatusFailed, err.Error())
		s.logger.Error("processing failed", "worker_id", workerID, "document_id", job.DocumentID, "error", err)
	} else {
		s.setStatus(job.DocumentID, constants.JobStatusCompleted, "")
		s.logger.Info("processed document successfully", "worker_id", workerID, "document_id", job.DocumentID)
	}

	if s.onDone != nil {
		s.onDone(job.DocumentID, res, err)
	}
}

func (s *Scheduler) setStatus(documentID string, status constants.JobStatus, errMsg string) {
	if s.status == nil {
		return
	}
	if err := s.status.SetStatus(context.Background(), documentID, status, errMsg); err != nil {
		s.logger.Warn("status update failed", "document_id", documentID, "status", status, "error", err)
	}
}

// Enqueue admits a job. It blocks when the queue is full and fails after
// shutdown has begun or when ctx is cancelled while waiting for a slot.
// The lock is held across the send so Shutdown cannot close the channel
// under a parked producer.
func (s *Scheduler) Enqueue(ctx context.Context, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Warn("cannot enqueue: scheduler is shutting down", "document_id", job.DocumentID)
		return common.NewAppError("SCHEDULER_CLOSED", "scheduler is shutting down", common.ErrInvalidInput)
	}

	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	s.setStatus(job.DocumentID, constants.JobStatusQueued, "")

	select {
	case s.ch <- job:
	default:
		s.logger.Warn("queue full, applying backpressure", "document_id", job.DocumentID)
		select {
		case s.ch <- job:
		case <-ctx.Done():
			s.setStatus(job.DocumentID, constants.JobStatusFailed, "admission cancelled")
			return fmt.Errorf("enqueue %s: %w", job.DocumentID, ctx.Err())
		}
	}
	s.logger.Info("queued document for processing", "document_id", job.DocumentID)
	return nil
}

// Outcome is a finished job: exactly one of Result and Err is set.
type Outcome struct {
	Result *pipeline.Result
	Err    error
}

// Collect returns the stored outcome for a document and removes it.
// The second return is false while the job is still pending or unknown.
func (s *Scheduler) Collect(documentID string) (Outcome, bool) {
	s.resMu.Lock()
	defer s.resMu.Unlock()
	if res, ok := s.results[documentID]; ok {
		delete(s.results, documentID)
		return Outcome{Result: res}, true
	}
	if err, ok := s.errs[documentID]; ok {
		delete(s.errs, documentID)
		return Outcome{Err: err}, true
	}
	return Outcome{}, false
}

// Shutdown stops admission and waits for in-flight and queued jobs to drain,
// or for the context to expire.
func (s *Scheduler) Shutdown(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); s.wg.Wait() }()

	select {
	case <-ctx.Done():
		s.logger.Warn("shutdown interrupted by context")
	case <-done:
		s.logger.Info("queue drained, shutdown complete")
	}
}
