package platform

import (
	"context"
	"testing"
)

func TestRunJobRequiresHandler(t *testing.T) {
	s := NewCronScheduler()
	defer s.Stop()

	if _, err := s.RunJob(context.Background(), "@daily", "unknown"); err == nil {
		t.Fatalf("expected error for unregistered job name")
	}
}

func TestRunJobRegistersAndLists(t *testing.T) {
	s := NewCronScheduler()
	defer s.Stop()
	ctx := context.Background()

	s.Register("daily_game", func(ctx context.Context, job Job) {})

	id, err := s.RunJob(ctx, "0 3 * * *", "daily_game")
	if err != nil {
		t.Fatalf("RunJob: %v", err)
	}
	if id == "" {
		t.Fatalf("empty job id")
	}

	jobs, err := s.ListJobs(ctx)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(jobs))
	}
	if jobs[0].ID != id || jobs[0].Name != "daily_game" || jobs[0].Cron != "0 3 * * *" {
		t.Fatalf("job = %+v", jobs[0])
	}
}

func TestRunJobRejectsBadCron(t *testing.T) {
	s := NewCronScheduler()
	defer s.Stop()

	s.Register("daily_game", func(ctx context.Context, job Job) {})
	if _, err := s.RunJob(context.Background(), "not a cron expr", "daily_game"); err == nil {
		t.Fatalf("expected cron parse error")
	}
}

func TestCancelJob(t *testing.T) {
	s := NewCronScheduler()
	defer s.Stop()
	ctx := context.Background()

	s.Register("daily_game", func(ctx context.Context, job Job) {})
	id, err := s.RunJob(ctx, "@daily", "daily_game")
	if err != nil {
		t.Fatalf("RunJob: %v", err)
	}
	if err := s.CancelJob(ctx, id); err != nil {
		t.Fatalf("CancelJob: %v", err)
	}
	if jobs, _ := s.ListJobs(ctx); len(jobs) != 0 {
		t.Fatalf("jobs remain after cancel: %+v", jobs)
	}
	if err := s.CancelJob(ctx, id); err == nil {
		t.Fatalf("cancelling a cancelled job must fail")
	}
}
