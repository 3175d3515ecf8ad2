package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"deepwork/report-generator/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(reportID uuid.UUID)
}

type worker struct {
	reportRepo    repositories.ReportRepository
	reportService ReportService
	jobQueue      chan uuid.UUID
	concurrency   int
	wg            sync.WaitGroup
	stopChan      chan struct{}
}

func NewWorker(
	reportRepo repositories.ReportRepository,
	reportService ReportService,
	concurrency int,
) Worker {
	return &worker{
		reportRepo:    reportRepo,
		reportService: reportService,
		jobQueue:      make(chan uuid.UUID, 100),
		concurrency:   concurrency,
		stopChan:      make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	// Pick up jobs that were queued before a restart.
	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	log.Println("✅ Worker started successfully")
}

// Stop implements Worker.
func (w *worker) Stop() {
	log.Println("🛑 Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	log.Println("✅ Worker stopped")
}

// EnqueueJob implements Worker.
func (w *worker) EnqueueJob(reportID uuid.UUID) {
	select {
	case w.jobQueue <- reportID:
		log.Printf("📥 Report job %s enqueued\n", reportID)
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue job %s\n", reportID)
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log.Printf("🚀 Worker %d started processing jobs\n", workerID)

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case reportID := <-w.jobQueue:
			log.Printf("👷 Worker #%d processing job %s\n", workerID, reportID)
			if err := w.reportService.ProcessJob(ctx, reportID); err != nil {
				log.Printf("❌ Worker #%d failed to process job %s: %v\n", workerID, reportID, err)
			} else {
				log.Printf("✅ Worker #%d completed job %s\n", workerID, reportID)
			}
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	log.Println("🔄 Starting pending jobs poller")

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Pending jobs poller stopped")
			return
		case <-ticker.C:
			pendingJobs, err := w.reportRepo.FindPendingJobs(10)
			if err != nil {
				log.Printf("⚠️  Failed to fetch pending jobs: %v\n", err)
				continue
			}

			if len(pendingJobs) > 0 {
				log.Printf("📋 Found %d pending jobs\n", len(pendingJobs))
			}

			for _, job := range pendingJobs {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
