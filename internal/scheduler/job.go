package scheduler

import (
	"context"
	"time"
)

// Job is a unit of scheduled work
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	// Name identifies the job in logs and history
	Name() string

	// Schedule returns the cron expression (with seconds field),
	// e.g. "0 */5 9-16 * * 1-5" = 평일 장중 5분마다
	Schedule() string

	// Run executes the job once
	Run(ctx context.Context) error
}

// RunRecord captures one execution of a job.
type RunRecord struct {
	JobName    string        `json:"job_name"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`
	Attempts   int           `json:"attempts"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
}

// historyLimit caps per-job run records kept in memory.
const historyLimit = 100

// runHistory keeps the most recent records for one job.
type runHistory struct {
	records []RunRecord
}

func (h *runHistory) add(rec RunRecord) {
	h.records = append(h.records, rec)
	if len(h.records) > historyLimit {
		h.records = h.records[len(h.records)-historyLimit:]
	}
}

func (h *runHistory) last() (RunRecord, bool) {
	if len(h.records) == 0 {
		return RunRecord{}, false
	}
	return h.records[len(h.records)-1], true
}
