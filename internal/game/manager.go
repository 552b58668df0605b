package game

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/reefbound/treasure-quest/internal/board"
	"github.com/reefbound/treasure-quest/internal/dive"
	"github.com/reefbound/treasure-quest/internal/msgcat"
	"github.com/reefbound/treasure-quest/internal/obslog"
	"github.com/reefbound/treasure-quest/pkg/divedto"
)

// Manager orchestrates one player's session against a post: tile selection,
// dive execution, effect handling. All rule logic lives in the dive package;
// the manager wires it to storage, leaderboards and player-facing text.
type Manager struct {
	svc  *Service
	cat  *msgcat.Catalog
	repo *Repository
}

func NewManager(svc *Service, cat *msgcat.Catalog) *Manager {
	return &Manager{svc: svc, cat: cat}
}

// AttachRepository wires the optional Postgres archive for finished games.
func (m *Manager) AttachRepository(r *Repository) {
	if m != nil {
		m.repo = r
	}
}

// SelectResult reports the outcome of a tile tap. Rejected selections carry
// the message to surface; accepted ones carry the now-pending tile.
type SelectResult struct {
	Tile     board.Tile
	Rejected bool
	Message  string
}

// SelectTile applies the selection preconditions and records the pending
// selection. Rejections clear any prior pending tile.
func (m *Manager) SelectTile(ctx context.Context, username, postID string, c board.Coordinate) (SelectResult, error) {
	b, err := m.svc.LoadPlayerGameboard(ctx, username, postID)
	if err != nil {
		return SelectResult{}, err
	}

	tile, verr := dive.ValidateSelection(&b, c)
	if verr != nil {
		var explored dive.AlreadyExploredError
		switch {
		case errors.Is(verr, dive.ErrGameOver):
			return SelectResult{}, divedto.InvalidState("game is over")
		case errors.Is(verr, dive.ErrLandTile):
			_ = m.svc.ClearPendingSelection(ctx, username, postID)
			return SelectResult{
				Rejected: true,
				Message:  m.cat.RenderOr("select.land_rejected", nil, verr.Error()),
			}, nil
		case errors.As(verr, &explored):
			_ = m.svc.ClearPendingSelection(ctx, username, postID)
			return SelectResult{
				Rejected: true,
				Message: m.cat.RenderOr("select.already_explored",
					map[string]any{"Treasure": explored.TreasureValue}, verr.Error()),
			}, nil
		default:
			return SelectResult{}, verr
		}
	}

	if err := m.svc.SavePendingSelection(ctx, username, postID, c); err != nil {
		return SelectResult{}, err
	}
	return SelectResult{Tile: tile}, nil
}

// DiveOutcome is what the UI needs after a resolved dive.
type DiveOutcome struct {
	Board         board.GameBoard
	Title         string
	Message       string
	TreasureFound int
	GameOver      bool
	FinalScore    int
}

// Dive executes the dive against the pending selection, persists the updated
// progress record, and on a terminal board submits the score to both
// leaderboards and the archive. A failed leaderboard write after a successful
// save is logged and returned; the save is not rolled back.
func (m *Manager) Dive(ctx context.Context, username, postID string) (DiveOutcome, error) {
	c, ok, err := m.svc.LoadPendingSelection(ctx, username, postID)
	if err != nil {
		return DiveOutcome{}, err
	}
	if !ok {
		return DiveOutcome{}, divedto.InvalidState(m.cat.RenderOr("dive.error", nil, "no tile selected"))
	}

	b, err := m.svc.LoadPlayerGameboard(ctx, username, postID)
	if err != nil {
		return DiveOutcome{}, err
	}

	res, err := dive.Resolve(b, c, time.Now())
	if err != nil {
		if errors.Is(err, dive.ErrGameOver) {
			return DiveOutcome{}, divedto.InvalidState("game is over")
		}
		// The pending selection no longer satisfies the preconditions
		// (stale record); clear it and report.
		_ = m.svc.ClearPendingSelection(ctx, username, postID)
		return DiveOutcome{}, divedto.InvalidState(err.Error())
	}

	out := DiveOutcome{
		Board:         res.Board,
		TreasureFound: res.TreasureFound,
		GameOver:      res.Board.GameOver,
		FinalScore:    res.FinalScore,
	}

	switch res.Outcome {
	case dive.OutcomeOutOfAir:
		out.Message = m.cat.RenderOr("gameover.out_of_air", nil, "Oh no! You ran out of air!")
	case dive.OutcomeFullClear:
		out.Message = m.cat.RenderOr("gameover.full_clear", nil, "You found all the treasure!")
	}
	if out.Message != "" {
		res.Board.GameOverMessage = out.Message
		out.Board.GameOverMessage = out.Message
	}

	for _, eff := range res.Effects {
		switch e := eff.(type) {
		case dive.SaveBoard:
			if err := m.svc.SaveGameboard(ctx, username, postID, res.Board); err != nil {
				return DiveOutcome{}, err
			}
		case dive.Notify:
			out.Title = m.cat.RenderOr("dive.complete_title", nil, "Dive Complete!")
			out.Message = m.hintText(e.Hint)
		case dive.SubmitScore:
			if err := m.submitScore(ctx, username, postID, &res.Board, e.Score); err != nil {
				return out, err
			}
		}
	}

	if err := m.svc.ClearPendingSelection(ctx, username, postID); err != nil {
		return out, err
	}

	obslog.L().Info("dive_resolved",
		zap.String("username", username),
		zap.String("post_id", postID),
		zap.String("game_number", res.Board.GameNumber),
		zap.Int("depth", res.Tile.Depth),
		zap.Int("treasure_found", res.TreasureFound),
		zap.Int("air_left", res.Board.AirSupply),
		zap.Bool("game_over", res.Board.GameOver),
	)
	return out, nil
}

// StartGame acknowledges the welcome screen: marks the board started without
// resolving a dive.
func (m *Manager) StartGame(ctx context.Context, username, postID string) (board.GameBoard, error) {
	b, err := m.svc.LoadPlayerGameboard(ctx, username, postID)
	if err != nil {
		return board.GameBoard{}, err
	}
	if b.GameStarted {
		return b, nil
	}
	b.GameStarted = true
	if err := m.svc.SaveGameboard(ctx, username, postID, b); err != nil {
		return board.GameBoard{}, err
	}
	return b, nil
}

func (m *Manager) submitScore(ctx context.Context, username, postID string, b *board.GameBoard, score int) error {
	if err := m.svc.UpdateGlobalLeaderboard(ctx, score, username); err != nil {
		obslog.L().Warn("global_leaderboard_update_failed", zap.String("username", username), zap.Error(err))
		return err
	}
	if err := m.svc.UpdateDailyLeaderboard(ctx, username, score, b.GameNumber); err != nil {
		obslog.L().Warn("daily_leaderboard_update_failed", zap.String("username", username), zap.Error(err))
		return err
	}
	if m.repo != nil {
		if err := m.repo.SaveResult(ctx, username, postID, b, score); err != nil {
			// The archive is best effort; redis already holds the result.
			obslog.L().Warn("result_archive_failed", zap.String("username", username), zap.Error(err))
		}
	}
	return nil
}

func (m *Manager) hintText(h board.Hint) string {
	if h.TreasureFound > 0 {
		return m.cat.RenderOr("hint.treasure_found", nil, "Sweet! You found treasure!")
	}
	msg := m.cat.RenderOr("hint.no_treasure", nil, "You did not find any treasure down here.")
	if h.HasLead {
		return msg + m.cat.RenderOr("hint.glimmer",
			map[string]any{"Direction": string(h.Toward)},
			" Off in the distance you see a glimmer of light.")
	}
	return msg + m.cat.RenderOr("hint.dark", nil, " It's dark down here.")
}
