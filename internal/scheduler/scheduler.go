package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/tradepilot/backend/pkg/logger"
)

// Scheduler drives registered jobs on their cron schedules.
// ⭐ SSOT: 주기 실행은 이 스케줄러를 통해서만
type Scheduler struct {
	cron   *cron.Cron
	logger *logger.Logger

	mu      sync.RWMutex
	jobs    map[string]Job
	history map[string]*runHistory

	maxRetries int
	retryDelay time.Duration
}

// New creates a scheduler with second-resolution cron expressions.
func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		logger:     log.WithField("service", "scheduler"),
		jobs:       make(map[string]Job),
		history:    make(map[string]*runHistory),
		maxRetries: 2,
		retryDelay: 30 * time.Second,
	}
}

// AddJob registers a job under its name and arms its cron entry.
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("job %s already registered", name)
	}

	if _, err := s.cron.AddFunc(job.Schedule(), func() {
		s.execute(job)
	}); err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = job
	s.history[name] = &runHistory{}

	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": job.Schedule(),
	}).Info("Job registered")

	return nil
}

// Start arms the cron loop. Returns immediately.
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop halts scheduling and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// ListJobs returns every registered job.
func (s *Scheduler) ListJobs() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

// RunJobNow executes a job synchronously, outside its schedule.
// CLI 단발 실행용. retry와 history 기록은 스케줄 실행과 동일.
func (s *Scheduler) RunJobNow(name string) error {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %s not found", name)
	}

	rec := s.execute(job)
	if !rec.Success {
		return fmt.Errorf("job %s failed: %s", name, rec.Error)
	}
	return nil
}

// LastRun returns the most recent record for a job, if any.
func (s *Scheduler) LastRun(name string) (RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[name]
	if !ok {
		return RunRecord{}, false
	}
	return history.last()
}

// execute runs a job with retries and records the outcome.
func (s *Scheduler) execute(job Job) RunRecord {
	name := job.Name()
	started := time.Now()

	s.logger.WithField("job", name).Info("Job started")

	var lastErr error
	attempts := 0
	for attempts <= s.maxRetries {
		attempts++
		if lastErr = job.Run(context.Background()); lastErr == nil {
			break
		}
		s.logger.WithFields(map[string]interface{}{
			"job":     name,
			"attempt": attempts,
			"error":   lastErr.Error(),
		}).Warn("Job execution failed")

		if attempts <= s.maxRetries {
			time.Sleep(s.retryDelay)
		}
	}

	finished := time.Now()
	rec := RunRecord{
		JobName:    name,
		StartedAt:  started,
		FinishedAt: finished,
		Duration:   finished.Sub(started),
		Attempts:   attempts,
		Success:    lastErr == nil,
	}
	if lastErr != nil {
		rec.Error = lastErr.Error()
	}

	s.mu.Lock()
	if history, ok := s.history[name]; ok {
		history.add(rec)
	}
	s.mu.Unlock()

	if rec.Success {
		s.logger.WithFields(map[string]interface{}{
			"job":      name,
			"duration": rec.Duration,
		}).Info("Job completed")
	} else {
		s.logger.WithFields(map[string]interface{}{
			"job":      name,
			"duration": rec.Duration,
			"error":    rec.Error,
		}).Error("Job failed after retries")
	}

	return rec
}
