package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/reefbound/treasure-quest/internal/board"
	appcfg "github.com/reefbound/treasure-quest/internal/config"
	"github.com/reefbound/treasure-quest/internal/game"
	"github.com/reefbound/treasure-quest/internal/lifecycle"
	"github.com/reefbound/treasure-quest/internal/msgcat"
	"github.com/reefbound/treasure-quest/internal/obslog"
	"github.com/reefbound/treasure-quest/internal/platform"
	"github.com/reefbound/treasure-quest/internal/render"
	"github.com/reefbound/treasure-quest/pkg/divedto"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis url error: %v", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("redis ping error: %v", err)
	}

	cat, err := msgcat.New(cfg.MessageOverrideDir)
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}

	svc := game.NewService(rdb)
	mgr := game.NewManager(svc, cat)
	if cfg.DatabaseURL != "" {
		repo, err := game.NewRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("archive repo init error: %v", err)
		}
		defer func() { _ = repo.Close() }()
		mgr.AttachRepository(repo)
	}

	client := platform.NewClient(cfg.PlatformBaseURL)
	sched := platform.NewCronScheduler()
	defer sched.Stop()
	runner := lifecycle.NewRunner(svc, cat, sched, client, render.NewSVGBoardRenderer(), cfg.SubredditName)

	sched.Register(lifecycle.DailyJobName, func(ctx context.Context, job platform.Job) {
		if _, err := runner.RunDaily(ctx); err != nil {
			obslog.L().Error("daily_game_failed", zap.String("job_id", job.ID), zap.Error(err))
		}
	})

	ws := platform.NewEventStream(cfg.PlatformWSURL, 5, time.Second)
	ws.OnStateChange(func(state platform.StreamState) {
		obslog.L().Info("event_stream_state", zap.String("state", string(state)))
	})
	ws.OnEvent(func(ev *platform.Event) {
		// Keep the read loop free; each event runs to completion on its own.
		go handleEvent(client, mgr, runner, cat, cfg, ev)
	})

	cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ws.Connect(cctx); err != nil {
		cancel()
		log.Fatalf("event stream connect error: %v", err)
	}
	cancel()

	obslog.L().Info("treasure_bot_started", zap.String("subreddit", cfg.SubredditName))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	_ = ws.Close(context.Background())
	_ = rdb.Close()
}

func handleEvent(client *platform.Client, mgr *game.Manager, runner *lifecycle.Runner, cat *msgcat.Catalog, cfg *appcfg.AppConfig, ev *platform.Event) {
	if ev == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch ev.Type {
	case "select":
		res, err := mgr.SelectTile(ctx, ev.Username, ev.PostID, board.Coordinate{Row: ev.Row, Col: ev.Col})
		if err != nil {
			toastError(ctx, client, err)
			return
		}
		if res.Rejected {
			_ = client.ShowToast(ctx, res.Message)
		}
	case "dive":
		out, err := mgr.Dive(ctx, ev.Username, ev.PostID)
		if err != nil {
			toastError(ctx, client, err)
			return
		}
		if out.Message != "" {
			_ = client.ShowToast(ctx, out.Message)
		}
	case "start":
		if _, err := mgr.StartGame(ctx, ev.Username, ev.PostID); err != nil {
			toastError(ctx, client, err)
		}
	case "moderator":
		handleModeratorCommand(ctx, client, runner, cat, cfg, ev.Command)
	default:
		obslog.L().Debug("event_ignored", zap.String("type", ev.Type))
	}
}

func handleModeratorCommand(ctx context.Context, client *platform.Client, runner *lifecycle.Runner, cat *msgcat.Catalog, cfg *appcfg.AppConfig, command string) {
	switch command {
	case "start-daily":
		if _, err := runner.StartDailySchedule(ctx, cfg.DailyCron); err != nil {
			toastError(ctx, client, err)
			return
		}
		_ = client.ShowToast(ctx, cat.RenderOr("toast.daily_scheduled", nil, "Daily Game scheduled!"))
	case "cancel-jobs":
		if _, err := runner.CancelAllJobs(ctx); err != nil {
			toastError(ctx, client, err)
			return
		}
		_ = client.ShowToast(ctx, cat.RenderOr("toast.jobs_cancelled", nil, "Game schedule cancelled!"))
	case "show-jobs":
		jobs, err := runner.Jobs(ctx)
		if err != nil {
			toastError(ctx, client, err)
			return
		}
		for _, j := range jobs {
			obslog.L().Info("scheduled_job", zap.String("job_id", j.ID), zap.String("name", j.Name), zap.String("cron", j.Cron))
		}
		_ = client.ShowToast(ctx, cat.RenderOr("toast.jobs_listed", nil, "Check logs to see scheduled jobs."))
	case "reset-game-number":
		if err := runner.ResetGameNumber(ctx); err != nil {
			toastError(ctx, client, err)
			return
		}
		_ = client.ShowToast(ctx, cat.RenderOr("toast.game_number_reset", nil, "Game number reset!"))
	case "test-game":
		if _, err := runner.StartTestGame(ctx); err != nil {
			toastError(ctx, client, err)
			return
		}
		_ = client.ShowToast(ctx, cat.RenderOr("toast.test_game_created", nil, "Test game created!"))
	default:
		obslog.L().Warn("unknown_moderator_command", zap.String("command", command))
	}
}

// toastError surfaces domain errors to the player and logs the rest. Errors
// are never retried from here.
func toastError(ctx context.Context, client *platform.Client, err error) {
	var de divedto.DomainError
	if errors.As(err, &de) {
		_ = client.ShowToast(ctx, de.Error())
		return
	}
	obslog.L().Error("event_failed", zap.Error(err))
}
