package dive

import (
	"errors"
	"fmt"
	"time"

	"github.com/reefbound/treasure-quest/internal/board"
)

// FullClearBonus is added to the final score when every treasure tile on the
// board has been found.
const FullClearBonus = 100

// Selection rejections. These are recoverable: the caller clears the pending
// selection and surfaces a message, nothing else changes.
var (
	ErrLandTile = errors.New("land tile cannot be explored")
	ErrGameOver = errors.New("game is over")
)

// AlreadyExploredError reports a re-selected tile along with the treasure that
// was (or was not) found there, for display.
type AlreadyExploredError struct {
	TreasureValue int
}

func (e AlreadyExploredError) Error() string {
	return fmt.Sprintf("tile already explored, found %d coins", e.TreasureValue)
}

// ValidateSelection applies the tile selection preconditions: the game must
// still be running and the tile must be unexplored sea. Returns the tile that
// became the pending selection.
func ValidateSelection(b *board.GameBoard, c board.Coordinate) (board.Tile, error) {
	if b.GameOver {
		return board.Tile{}, ErrGameOver
	}
	if !b.InBounds(c) {
		return board.Tile{}, fmt.Errorf("coordinate out of range: %d,%d", c.Row, c.Col)
	}
	t := b.TileAt(c)
	if t.Kind == board.Land {
		return board.Tile{}, ErrLandTile
	}
	if t.Status == board.Explored {
		return board.Tile{}, AlreadyExploredError{TreasureValue: t.TreasureValue}
	}
	return t, nil
}

// Descent is the tick model of a dive: each Advance consumes one unit of air
// and one unit of depth until the target depth is reached or the air runs out.
// The end state is fully determined up front, but exposing the ticks lets a
// caller animate the descent.
type Descent struct {
	TargetDepth int
	Progress    int
	Air         int
}

func NewDescent(tile board.Tile, airSupply int) Descent {
	return Descent{TargetDepth: tile.Depth, Air: airSupply}
}

// Done reports whether the descent has terminated, by reaching the bottom or
// by exhausting the air supply.
func (d *Descent) Done() bool {
	return d.Progress >= d.TargetDepth || d.Air <= 0
}

// Advance performs one tick. It reports whether the descent is still running
// afterwards.
func (d *Descent) Advance() bool {
	if d.Done() {
		return false
	}
	d.Air--
	d.Progress++
	return !d.Done()
}

// Run drives the descent to completion and returns the remaining air. Bounded
// by min(TargetDepth, Air) ticks.
func (d *Descent) Run() int {
	for d.Advance() {
	}
	return d.Air
}

// Outcome classifies a resolved dive.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeOutOfAir
	OutcomeFullClear
)

// Effect is a side-effecting command the caller must execute after a resolve.
// The resolver itself never touches storage or the platform.
type Effect interface{ isEffect() }

// SaveBoard persists the updated progress record.
type SaveBoard struct{}

// Notify surfaces the dive-complete message with the directional hint.
type Notify struct{ Hint board.Hint }

// SubmitScore records the final score on the leaderboards.
type SubmitScore struct{ Score int }

func (SaveBoard) isEffect()   {}
func (Notify) isEffect()      {}
func (SubmitScore) isEffect() {}

// Result carries the post-dive board and what the caller must do with it.
type Result struct {
	Board         board.GameBoard
	Tile          board.Tile // the selected tile, pre-mutation
	TreasureFound int
	Outcome       Outcome
	Hint          board.Hint
	FinalScore    int
	Effects       []Effect
}

// Resolve executes one dive against the pending selection at c. The returned
// board is a copy; the input board is never mutated. A dive, once started,
// always completes: the only error paths are the selection preconditions.
func Resolve(b board.GameBoard, c board.Coordinate, now time.Time) (Result, error) {
	tile, err := ValidateSelection(&b, c)
	if err != nil {
		return Result{}, err
	}

	descent := NewDescent(tile, b.AirSupply)
	remainingAir := descent.Run()

	updated := board.UpdateTileStatus(b, c, board.Explored)
	updated.AirSupply = remainingAir

	res := Result{Tile: tile}
	// Treasure counts only if the diver surfaced with air to spare. Hitting
	// zero exactly as the tile is reached forfeits the loot.
	if tile.HasTreasure() && updated.AirSupply > 0 {
		updated.FoundTreasureCount++
		updated.FoundTreasureValue += tile.TreasureValue
		res.TreasureFound = tile.TreasureValue
	}

	updated.LastTileSelected = &tile
	updated.GameStarted = true
	updated.LastMoveTimestamp = now.UnixMilli()

	// Terminal checks in order: suffocation wins over a full clear.
	switch {
	case updated.AirSupply <= 0:
		res.Outcome = OutcomeOutOfAir
		updated.GameOver = true
	case updated.FoundTreasureCount == board.TreasureCount(&updated):
		res.Outcome = OutcomeFullClear
		updated.GameOver = true
	}

	res.Effects = append(res.Effects, SaveBoard{})
	if updated.GameOver {
		res.FinalScore = FinalScore(&updated)
		res.Effects = append(res.Effects, SubmitScore{Score: res.FinalScore})
	} else {
		res.Hint = board.TreasureHint(&updated, tile, res.TreasureFound)
		res.Effects = append(res.Effects, Notify{Hint: res.Hint})
	}

	res.Board = updated
	return res, nil
}

// FinalScore is treasure value plus remaining air plus the full-clear bonus.
func FinalScore(b *board.GameBoard) int {
	score := b.FoundTreasureValue
	if b.AirSupply > 0 {
		score += b.AirSupply
	}
	if b.FoundTreasureCount == board.TreasureCount(b) {
		score += FullClearBonus
	}
	return score
}
