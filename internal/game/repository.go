package game

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/reefbound/treasure-quest/internal/board"
)

// Repository archives finished games in Postgres. Optional: the manager works
// without it, redis remains the system of record for live state.
type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveResult upserts a finished game, keyed by (game_number, username). The
// same player re-finishing a test post overwrites rather than duplicates.
func (r *Repository) SaveResult(ctx context.Context, username, postID string, b *board.GameBoard, finalScore int) error {
	if r == nil || r.db == nil || b == nil {
		return nil
	}

	outcome := "out_of_air"
	if b.FoundTreasureCount == board.TreasureCount(b) {
		outcome = "full_clear"
	}

	var lastMove time.Time
	if b.LastMoveTimestamp > 0 {
		lastMove = time.UnixMilli(b.LastMoveTimestamp)
	} else {
		lastMove = time.Now()
	}

	q := `INSERT INTO treasure_games (
        game_number, username, post_id,
        final_score, treasure_found_count, treasure_found_value,
        air_remaining, outcome, last_move_at
      ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9
      ) ON CONFLICT (game_number, username) DO UPDATE SET
        post_id=EXCLUDED.post_id,
        final_score=EXCLUDED.final_score,
        treasure_found_count=EXCLUDED.treasure_found_count,
        treasure_found_value=EXCLUDED.treasure_found_value,
        air_remaining=EXCLUDED.air_remaining,
        outcome=EXCLUDED.outcome,
        last_move_at=EXCLUDED.last_move_at`

	_, err := r.db.ExecContext(ctx, q,
		b.GameNumber, strings.TrimSpace(username), strings.TrimSpace(postID),
		finalScore, b.FoundTreasureCount, b.FoundTreasureValue,
		b.AirSupply, outcome, lastMove,
	)
	return err
}
