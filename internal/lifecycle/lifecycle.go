package lifecycle

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/reefbound/treasure-quest/internal/game"
	"github.com/reefbound/treasure-quest/internal/msgcat"
	"github.com/reefbound/treasure-quest/internal/obslog"
	"github.com/reefbound/treasure-quest/internal/platform"
	"github.com/reefbound/treasure-quest/internal/render"
)

// DailyJobName is the scheduler job driving the once-per-day game cadence.
const DailyJobName = "daily_game"

// Poster publishes an interactive post on the host platform.
type Poster interface {
	SubmitPost(ctx context.Context, title, subreddit string, previewPNG []byte) (string, error)
}

// Runner owns the daily game lifecycle: counter, board publication, post
// submission, and the moderator-triggered variants.
type Runner struct {
	svc       *game.Service
	cat       *msgcat.Catalog
	sched     platform.Scheduler
	poster    Poster
	renderer  render.BoardRenderer
	subreddit string
}

func NewRunner(svc *game.Service, cat *msgcat.Catalog, sched platform.Scheduler, poster Poster, renderer render.BoardRenderer, subreddit string) *Runner {
	return &Runner{
		svc:       svc,
		cat:       cat,
		sched:     sched,
		poster:    poster,
		renderer:  renderer,
		subreddit: subreddit,
	}
}

// RunDaily advances the game counter, publishes the new canonical board, and
// submits the daily post. Invoked by the scheduler and safe to trigger
// concurrently: the counter increment is atomic, so two triggers produce two
// distinct games rather than a corrupted one.
func (r *Runner) RunDaily(ctx context.Context) (string, error) {
	if err := r.svc.EnsureGameNumber(ctx); err != nil {
		return "", fmt.Errorf("ensure game number: %w", err)
	}
	n, err := r.svc.IncrementGameNumber(ctx)
	if err != nil {
		return "", fmt.Errorf("increment game number: %w", err)
	}
	gameNumber := strconv.FormatInt(n, 10)

	return r.publishGame(ctx, gameNumber, "post.daily_title")
}

// StartTestGame publishes an ad-hoc game under the reserved game number 0
// without advancing the counter. Moderator action.
func (r *Runner) StartTestGame(ctx context.Context) (string, error) {
	if err := r.svc.EnsureGameNumber(ctx); err != nil {
		return "", fmt.Errorf("ensure game number: %w", err)
	}
	return r.publishGame(ctx, "0", "post.test_title")
}

func (r *Runner) publishGame(ctx context.Context, gameNumber, titleKey string) (string, error) {
	b, err := r.svc.GenerateDailyGameboard(ctx, gameNumber)
	if err != nil {
		return "", fmt.Errorf("generate daily gameboard: %w", err)
	}

	var preview []byte
	if r.renderer != nil {
		preview, err = r.renderer.RenderPNG(ctx, &b)
		if err != nil {
			// The post still goes out without a preview image.
			obslog.L().Warn("preview_render_failed", zap.String("game_number", gameNumber), zap.Error(err))
			preview = nil
		}
	}

	title := r.cat.RenderOr(titleKey, map[string]any{"GameNumber": gameNumber},
		"Treasure Quest Game #"+gameNumber)
	postID, err := r.poster.SubmitPost(ctx, title, r.subreddit, preview)
	if err != nil {
		return "", fmt.Errorf("submit post: %w", err)
	}

	obslog.L().Info("game_published",
		zap.String("game_number", gameNumber),
		zap.String("post_id", postID),
		zap.String("subreddit", r.subreddit),
	)
	return postID, nil
}

// StartDailySchedule cancels every scheduled job and then schedules the daily
// game, guaranteeing at most one active daily trigger.
func (r *Runner) StartDailySchedule(ctx context.Context, cronExpr string) (string, error) {
	if _, err := r.CancelAllJobs(ctx); err != nil {
		return "", err
	}
	jobID, err := r.sched.RunJob(ctx, cronExpr, DailyJobName)
	if err != nil {
		return "", fmt.Errorf("schedule daily game: %w", err)
	}
	if err := r.svc.SaveDailyJobID(ctx, jobID); err != nil {
		return "", err
	}
	obslog.L().Info("daily_game_scheduled", zap.String("job_id", jobID), zap.String("cron", cronExpr))
	return jobID, nil
}

// CancelAllJobs cancels every scheduled job and returns how many were
// cancelled.
func (r *Runner) CancelAllJobs(ctx context.Context) (int, error) {
	jobs, err := r.sched.ListJobs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list jobs: %w", err)
	}
	for _, j := range jobs {
		if err := r.sched.CancelJob(ctx, j.ID); err != nil {
			return 0, fmt.Errorf("cancel job %s: %w", j.ID, err)
		}
		obslog.L().Info("job_cancelled", zap.String("job_id", j.ID), zap.String("name", j.Name))
	}
	return len(jobs), nil
}

// Jobs lists the scheduled jobs for the moderator view.
func (r *Runner) Jobs(ctx context.Context) ([]platform.Job, error) {
	return r.sched.ListJobs(ctx)
}

// ResetGameNumber sets the counter back to 0. Moderator action.
func (r *Runner) ResetGameNumber(ctx context.Context) error {
	if err := r.svc.ResetGameNumber(ctx); err != nil {
		return err
	}
	obslog.L().Info("game_number_reset")
	return nil
}
