package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"areetampo/circular-economy/internal/metrics"
	"areetampo/circular-economy/internal/repositories"
)

const pendingBatchSize = 10

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(assessmentID uuid.UUID)
}

type worker struct {
	repo         repositories.AssessmentRepository
	pipeline     PipelineRunner
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	jobLease     time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
	log          *zap.Logger
}

func NewWorker(
	repo repositories.AssessmentRepository,
	pipeline PipelineRunner,
	concurrency int,
	queueSize int,
	pollInterval time.Duration,
	jobLease time.Duration,
	log *zap.Logger,
) Worker {
	return &worker{
		repo:         repo,
		pipeline:     pipeline,
		jobQueue:     make(chan uuid.UUID, queueSize),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		jobLease:     jobLease,
		stopChan:     make(chan struct{}),
		log:          log,
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.log.Info("🚀 Starting worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	w.log.Info("✅ Worker started successfully")
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("🛑 Stopping worker...")
		close(w.stopChan)
		w.wg.Wait()
		w.log.Info("✅ Worker stopped")
	})
}

// EnqueueJob implements Worker. A full queue drops the id; the poller picks
// the record up again later.
func (w *worker) EnqueueJob(assessmentID uuid.UUID) {
	select {
	case w.jobQueue <- assessmentID:
		w.log.Debug("📥 Job enqueued", zap.String("id", assessmentID.String()))
	case <-w.stopChan:
		w.log.Warn("⚠️ Worker stopped, cannot enqueue job", zap.String("id", assessmentID.String()))
	default:
		w.log.Warn("⚠️ Job queue full, leaving job for the poller", zap.String("id", assessmentID.String()))
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			w.log.Debug("👷 Worker stopped", zap.Int("worker", workerID))
			return
		case <-ctx.Done():
			return
		case id := <-w.jobQueue:
			status := w.processJob(ctx, id)
			metrics.WorkerJobs.WithLabelValues(status).Inc()
			w.log.Info("👷 Job processed",
				zap.Int("worker", workerID),
				zap.String("id", id.String()),
				zap.String("status", status))
		}
	}
}

// processJob runs one queued assessment and returns the outcome label.
func (w *worker) processJob(ctx context.Context, id uuid.UUID) string {
	claimed, err := w.repo.Claim(id)
	if err != nil {
		w.log.Error("❌ Failed to claim job", zap.String("id", id.String()), zap.Error(err))
		return "error"
	}
	if !claimed {
		return "skipped"
	}

	assessment, err := w.repo.FindByID(id)
	if err != nil {
		w.log.Error("❌ Failed to load job", zap.String("id", id.String()), zap.Error(err))
		return "error"
	}

	resp, err := w.pipeline.Run(ctx, Submission{Idea: assessment.Idea, Parameters: assessment.Parameters})
	if err != nil {
		if updateErr := w.repo.UpdateError(id, failureMessage(err)); updateErr != nil {
			w.log.Error("❌ Failed to record job failure", zap.String("id", id.String()), zap.Error(updateErr))
		}
		return "failed"
	}

	if err := w.repo.UpdateResult(id, resp); err != nil {
		w.log.Error("❌ Failed to save job result", zap.String("id", id.String()), zap.Error(err))
		return "error"
	}
	return "completed"
}

// failureMessage keeps provider details out of stored records.
func failureMessage(err error) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}
	var pErr *PipelineError
	if errors.As(err, &pErr) {
		return "internal error: " + pErr.Code()
	}
	return "internal error: " + ErrUnexpected.Error()
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			requeued, err := w.repo.RequeueStale(w.jobLease)
			if err != nil {
				w.log.Warn("⚠️ Failed to requeue stale jobs", zap.Error(err))
			} else if requeued > 0 {
				w.log.Warn("♻️ Requeued jobs with an expired lease", zap.Int64("count", requeued))
			}

			pending, err := w.repo.FindPendingJobs(pendingBatchSize, w.pollInterval)
			if err != nil {
				w.log.Warn("⚠️ Failed to fetch pending jobs", zap.Error(err))
				continue
			}

			if len(pending) > 0 {
				w.log.Info("📋 Found pending jobs", zap.Int("count", len(pending)))
			}

			for _, job := range pending {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
