package game

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/reefbound/treasure-quest/internal/board"
	"github.com/reefbound/treasure-quest/internal/obslog"
	"github.com/reefbound/treasure-quest/pkg/divedto"
)

// dailyLeaderboardLimit caps how many entries a daily leaderboard read returns.
const dailyLeaderboardLimit = 1000

// Service maps game concepts onto the key-value store: the canonical daily
// board, per-player progress records, the global game counter, and the
// global/daily leaderboards.
type Service struct {
	rdb *redis.Client
}

func NewService(rdb *redis.Client) *Service { return &Service{rdb: rdb} }

const gameNumberKey = "game_number"

func keyDailyGameboard(gameNumber string) string {
	return "dailyGameboard:" + strings.TrimSpace(gameNumber)
}

func keyPlayerGameboard(postID, username string) string {
	return "playerGameboard:" + strings.TrimSpace(postID) + ":" + strings.TrimSpace(username)
}

func keyPendingTile(postID, username string) string {
	return "pendingTile:" + strings.TrimSpace(postID) + ":" + strings.TrimSpace(username)
}

const keyGlobalLeaderboard = "leaderboard:global"

func keyDailyLeaderboard(gameNumber string) string {
	return "leaderboard:daily:" + strings.TrimSpace(gameNumber)
}

// GenerateDailyGameboard generates the canonical board for gameNumber and
// stores it. The stored board is the template copied into each player's
// progress record on first access and is never mutated afterwards.
func (s *Service) GenerateDailyGameboard(ctx context.Context, gameNumber string) (board.GameBoard, error) {
	b := board.Generate(gameNumber)
	raw, err := json.Marshal(b)
	if err != nil {
		return board.GameBoard{}, err
	}
	if err := s.rdb.Set(ctx, keyDailyGameboard(gameNumber), raw, 0).Err(); err != nil {
		return board.GameBoard{}, err
	}
	return b, nil
}

// LoadDailyGameboard fetches the canonical board for gameNumber. The daily
// board is expected to exist by the time any player reaches it.
func (s *Service) LoadDailyGameboard(ctx context.Context, gameNumber string) (board.GameBoard, error) {
	raw, err := s.rdb.Get(ctx, keyDailyGameboard(gameNumber)).Bytes()
	if err == redis.Nil {
		return board.GameBoard{}, divedto.NotFound("daily gameboard not found")
	}
	if err != nil {
		return board.GameBoard{}, err
	}
	var b board.GameBoard
	if err := json.Unmarshal(raw, &b); err != nil {
		return board.GameBoard{}, err
	}
	return b, nil
}

// LoadPlayerGameboard returns the player's progress record for the post,
// lazily materializing it from the current daily board on first access or
// when the stored record is malformed.
func (s *Service) LoadPlayerGameboard(ctx context.Context, username, postID string) (board.GameBoard, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(postID) == "" {
		return board.GameBoard{}, divedto.InvalidArgument("could not load player gameboard")
	}

	gameNumber, err := s.GameNumber(ctx)
	if err != nil {
		return board.GameBoard{}, err
	}

	raw, err := s.rdb.Get(ctx, keyPlayerGameboard(postID, username)).Bytes()
	if err != nil && err != redis.Nil {
		return board.GameBoard{}, err
	}

	if err == nil {
		var b board.GameBoard
		if uerr := json.Unmarshal(raw, &b); uerr == nil && len(b.Rows) > 0 {
			return b, nil
		}
		// Malformed records fall through to regeneration from the daily board.
		obslog.L().Warn("player_gameboard_malformed",
			zap.String("username", username),
			zap.String("post_id", postID),
		)
	}

	daily, err := s.LoadDailyGameboard(ctx, gameNumber)
	if err != nil {
		return board.GameBoard{}, err
	}
	if err := s.SaveGameboard(ctx, username, postID, daily); err != nil {
		return board.GameBoard{}, err
	}
	return daily, nil
}

// SaveGameboard overwrites the player's progress record. Upsert, no existence
// check.
func (s *Service) SaveGameboard(ctx context.Context, username, postID string, b board.GameBoard) error {
	if strings.TrimSpace(username) == "" {
		return divedto.InvalidArgument("user not found")
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, keyPlayerGameboard(postID, username), raw, 0).Err()
}

// SavePendingSelection records the tile a player has selected but not yet
// dived on, so a session survives a process restart.
func (s *Service) SavePendingSelection(ctx context.Context, username, postID string, c board.Coordinate) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(postID) == "" {
		return divedto.InvalidArgument("invalid selection context")
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, keyPendingTile(postID, username), raw, 0).Err()
}

// LoadPendingSelection returns the pending tile coordinate, or ok=false when
// no selection is pending.
func (s *Service) LoadPendingSelection(ctx context.Context, username, postID string) (board.Coordinate, bool, error) {
	raw, err := s.rdb.Get(ctx, keyPendingTile(postID, username)).Bytes()
	if err == redis.Nil {
		return board.Coordinate{}, false, nil
	}
	if err != nil {
		return board.Coordinate{}, false, err
	}
	var c board.Coordinate
	if err := json.Unmarshal(raw, &c); err != nil {
		return board.Coordinate{}, false, err
	}
	return c, true, nil
}

func (s *Service) ClearPendingSelection(ctx context.Context, username, postID string) error {
	return s.rdb.Del(ctx, keyPendingTile(postID, username)).Err()
}

// UpdateGlobalLeaderboard adds score to the player's cumulative total.
// Read-modify-write: two sessions of the same player finishing at once can
// lose one update. Accepted; scores are recomputable from archived games.
func (s *Service) UpdateGlobalLeaderboard(ctx context.Context, score int, username string) error {
	current, err := s.rdb.ZScore(ctx, keyGlobalLeaderboard, username).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	return s.rdb.ZAdd(ctx, keyGlobalLeaderboard, redis.Z{
		Member: username,
		Score:  current + float64(score),
	}).Err()
}

// UpdateDailyLeaderboard sets (does not accumulate) the player's score for a
// given day's game.
func (s *Service) UpdateDailyLeaderboard(ctx context.Context, username string, score int, gameNumber string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(gameNumber) == "" {
		return divedto.InvalidArgument("invalid daily leaderboard update")
	}
	return s.rdb.ZAdd(ctx, keyDailyLeaderboard(gameNumber), redis.Z{
		Member: username,
		Score:  float64(score),
	}).Err()
}

// GetDailyLeaderboard returns up to the top 1000 entries for the day, best
// score first.
func (s *Service) GetDailyLeaderboard(ctx context.Context, gameNumber string) ([]divedto.LeaderboardEntry, error) {
	rows, err := s.rdb.ZRevRangeWithScores(ctx, keyDailyLeaderboard(gameNumber), 0, dailyLeaderboardLimit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]divedto.LeaderboardEntry, 0, len(rows))
	for _, z := range rows {
		member, _ := z.Member.(string)
		out = append(out, divedto.LeaderboardEntry{Member: member, Score: z.Score})
	}
	return out, nil
}

// GameNumber returns the current global game counter.
func (s *Service) GameNumber(ctx context.Context) (string, error) {
	v, err := s.rdb.Get(ctx, gameNumberKey).Result()
	if err == redis.Nil {
		return "", divedto.NotFound("game number not found")
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// EnsureGameNumber initializes the counter to 0 when unset.
func (s *Service) EnsureGameNumber(ctx context.Context) error {
	_, err := s.rdb.Get(ctx, gameNumberKey).Result()
	if err == redis.Nil {
		obslog.L().Info("game_number_init")
		return s.rdb.Set(ctx, gameNumberKey, "0", 0).Err()
	}
	return err
}

// IncrementGameNumber advances the counter atomically (safe for concurrent
// schedule triggers) and returns the new value.
func (s *Service) IncrementGameNumber(ctx context.Context) (int64, error) {
	return s.rdb.IncrBy(ctx, gameNumberKey, 1).Result()
}

// ResetGameNumber sets the counter back to 0.
func (s *Service) ResetGameNumber(ctx context.Context) error {
	return s.rdb.Set(ctx, gameNumberKey, "0", 0).Err()
}

const dailyJobIDKey = "dailyGameJobId"

// SaveDailyJobID remembers the scheduler job driving the daily game.
func (s *Service) SaveDailyJobID(ctx context.Context, id string) error {
	return s.rdb.Set(ctx, dailyJobIDKey, id, 0).Err()
}

// DailyJobID returns the remembered daily job id, empty when none is set.
func (s *Service) DailyJobID(ctx context.Context) (string, error) {
	v, err := s.rdb.Get(ctx, dailyJobIDKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	return v, err
}
