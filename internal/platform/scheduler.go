package platform

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// JobHandler runs when a scheduled job fires.
type JobHandler func(ctx context.Context, job Job)

// CronScheduler implements the host scheduler contract on robfig/cron for
// standalone deployment. Handlers are registered per job name before jobs are
// scheduled.
type CronScheduler struct {
	mu       sync.Mutex
	cron     *cron.Cron
	handlers map[string]JobHandler
	jobs     map[string]cronJob // id → entry
}

type cronJob struct {
	job     Job
	entryID cron.EntryID
}

func NewCronScheduler() *CronScheduler {
	s := &CronScheduler{
		cron:     cron.New(),
		handlers: make(map[string]JobHandler),
		jobs:     make(map[string]cronJob),
	}
	s.cron.Start()
	return s
}

// Register binds a handler to a job name. Scheduling a name with no handler
// is an error.
func (s *CronScheduler) Register(name string, h JobHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[strings.TrimSpace(name)] = h
}

func (s *CronScheduler) ListJobs(ctx context.Context) ([]Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, 0, len(s.jobs))
	for _, e := range s.jobs {
		out = append(out, e.job)
	}
	return out, nil
}

func (s *CronScheduler) RunJob(ctx context.Context, cronExpr, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.handlers[strings.TrimSpace(name)]
	if !ok {
		return "", fmt.Errorf("no handler registered for job %q", name)
	}

	job := Job{ID: uuid.NewString(), Name: strings.TrimSpace(name), Cron: strings.TrimSpace(cronExpr)}
	entryID, err := s.cron.AddFunc(job.Cron, func() {
		h(context.Background(), job)
	})
	if err != nil {
		return "", fmt.Errorf("schedule %q: %w", name, err)
	}
	s.jobs[job.ID] = cronJob{job: job, entryID: entryID}
	return job.ID, nil
}

func (s *CronScheduler) CancelJob(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job not found: %s", id)
	}
	s.cron.Remove(e.entryID)
	delete(s.jobs, id)
	return nil
}

// Stop halts the underlying cron runner. Pending jobs finish.
func (s *CronScheduler) Stop() {
	s.cron.Stop()
}
