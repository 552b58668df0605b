package game

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/reefbound/treasure-quest/internal/board"
	"github.com/reefbound/treasure-quest/internal/msgcat"
	"github.com/reefbound/treasure-quest/pkg/divedto"
)

func newTestManager(t *testing.T) (*Manager, *Service, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat: %v", err)
	}
	svc := NewService(rdb)
	return NewManager(svc, cat), svc, mr
}

// installDaily seeds the counter and stores b as the canonical board for
// game number 1.
func installDaily(t *testing.T, mr *miniredis.Miniredis, b board.GameBoard) {
	t.Helper()
	raw, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal board: %v", err)
	}
	mr.Set("game_number", "1")
	mr.Set("dailyGameboard:1", string(raw))
}

// scriptedBoard builds an all-sea board at a fixed depth, with land at (0,0)
// and a single treasure at (0,1).
func scriptedBoard(depth, treasure int) board.GameBoard {
	b := board.GameBoard{
		AirSupply:  board.InitialAirSupply,
		GameNumber: "1",
	}
	for r := 0; r < board.Size; r++ {
		var row board.Row
		for c := 0; c < board.Size; c++ {
			row.Tiles = append(row.Tiles, board.Tile{
				Kind:        board.Sea,
				Status:      board.Unexplored,
				Depth:       depth,
				Coordinates: board.Coordinate{Row: r, Col: c},
			})
		}
		b.Rows = append(b.Rows, row)
	}
	b.Rows[0].Tiles[0].Kind = board.Land
	b.Rows[0].Tiles[0].Depth = 0
	b.Rows[0].Tiles[1].TreasureValue = treasure
	return b
}

func TestSelectTileLandRejected(t *testing.T) {
	m, svc, mr := newTestManager(t)
	ctx := context.Background()
	installDaily(t, mr, scriptedBoard(40, 25))

	res, err := m.SelectTile(ctx, "alice", "post1", board.Coordinate{Row: 0, Col: 0})
	if err != nil {
		t.Fatalf("SelectTile: %v", err)
	}
	if !res.Rejected || res.Message == "" {
		t.Fatalf("land selection not rejected: %+v", res)
	}
	if _, ok, _ := svc.LoadPendingSelection(ctx, "alice", "post1"); ok {
		t.Fatalf("rejected selection left a pending tile")
	}
}

func TestSelectTileAcceptedPersistsPending(t *testing.T) {
	m, svc, mr := newTestManager(t)
	ctx := context.Background()
	installDaily(t, mr, scriptedBoard(40, 25))

	want := board.Coordinate{Row: 2, Col: 3}
	res, err := m.SelectTile(ctx, "alice", "post1", want)
	if err != nil {
		t.Fatalf("SelectTile: %v", err)
	}
	if res.Rejected {
		t.Fatalf("sea tile rejected: %+v", res)
	}
	got, ok, err := svc.LoadPendingSelection(ctx, "alice", "post1")
	if err != nil || !ok || got != want {
		t.Fatalf("pending = %+v ok=%v err=%v, want %+v", got, ok, err, want)
	}
}

func TestDiveWithoutSelection(t *testing.T) {
	m, _, mr := newTestManager(t)
	installDaily(t, mr, scriptedBoard(40, 25))

	_, err := m.Dive(context.Background(), "alice", "post1")
	if !divedto.IsInvalidState(err) {
		t.Fatalf("expected InvalidState, got %v", err)
	}
}

func TestDiveResolvesAndPersists(t *testing.T) {
	m, svc, mr := newTestManager(t)
	ctx := context.Background()
	installDaily(t, mr, scriptedBoard(40, 25))

	target := board.Coordinate{Row: 0, Col: 1} // the treasure tile
	if _, err := m.SelectTile(ctx, "alice", "post1", target); err != nil {
		t.Fatalf("SelectTile: %v", err)
	}
	out, err := m.Dive(ctx, "alice", "post1")
	if err != nil {
		t.Fatalf("Dive: %v", err)
	}
	if out.GameOver {
		t.Fatalf("single dive must not end the game: %+v", out)
	}
	if out.TreasureFound != 25 {
		t.Fatalf("treasure found = %d, want 25", out.TreasureFound)
	}
	if out.Board.AirSupply != board.InitialAirSupply-40 {
		t.Fatalf("air = %d, want %d", out.Board.AirSupply, board.InitialAirSupply-40)
	}
	if !strings.Contains(out.Message, "treasure") {
		t.Fatalf("hint message missing: %q", out.Message)
	}

	saved, err := svc.LoadPlayerGameboard(ctx, "alice", "post1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if tile := saved.TileAt(target); tile.Status != board.Explored {
		t.Fatalf("dived tile not persisted as explored")
	}
	if !saved.GameStarted || saved.FoundTreasureValue != 25 {
		t.Fatalf("progress not persisted: started=%v value=%d", saved.GameStarted, saved.FoundTreasureValue)
	}
	if _, ok, _ := svc.LoadPendingSelection(ctx, "alice", "post1"); ok {
		t.Fatalf("pending selection survived the dive")
	}
}

func TestDiveFullClearSubmitsScore(t *testing.T) {
	m, svc, mr := newTestManager(t)
	ctx := context.Background()
	installDaily(t, mr, scriptedBoard(40, 25))

	target := board.Coordinate{Row: 0, Col: 1}
	if _, err := m.SelectTile(ctx, "alice", "post1", target); err != nil {
		t.Fatalf("SelectTile: %v", err)
	}

	// Force a full clear: pre-explore every other sea tile directly in the
	// stored progress record.
	b, err := svc.LoadPlayerGameboard(ctx, "alice", "post1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for r := range b.Rows {
		for c := range b.Rows[r].Tiles {
			tile := &b.Rows[r].Tiles[c]
			if tile.Kind == board.Sea && tile.Coordinates != target {
				tile.Status = board.Explored
			}
		}
	}
	if err := svc.SaveGameboard(ctx, "alice", "post1", b); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := m.Dive(ctx, "alice", "post1")
	if err != nil {
		t.Fatalf("Dive: %v", err)
	}
	if !out.GameOver {
		t.Fatalf("full clear not terminal: %+v", out)
	}
	wantScore := 25 + (board.InitialAirSupply - 40) + 100
	if out.FinalScore != wantScore {
		t.Fatalf("final score = %d, want %d", out.FinalScore, wantScore)
	}

	entries, err := svc.GetDailyLeaderboard(ctx, "1")
	if err != nil {
		t.Fatalf("GetDailyLeaderboard: %v", err)
	}
	if len(entries) != 1 || entries[0].Member != "alice" || int(entries[0].Score) != wantScore {
		t.Fatalf("daily leaderboard = %+v", entries)
	}

	saved, err := svc.LoadPlayerGameboard(ctx, "alice", "post1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !saved.GameOver || saved.GameOverMessage == "" {
		t.Fatalf("terminal state not persisted: over=%v msg=%q", saved.GameOver, saved.GameOverMessage)
	}

	// The board is now absorbing.
	if _, err := m.SelectTile(ctx, "alice", "post1", board.Coordinate{Row: 5, Col: 5}); !divedto.IsInvalidState(err) {
		t.Fatalf("select on finished game: expected InvalidState, got %v", err)
	}
}

func TestStartGameIdempotent(t *testing.T) {
	m, svc, mr := newTestManager(t)
	ctx := context.Background()
	installDaily(t, mr, scriptedBoard(40, 25))

	b, err := m.StartGame(ctx, "alice", "post1")
	if err != nil || !b.GameStarted {
		t.Fatalf("StartGame: started=%v err=%v", b.GameStarted, err)
	}
	again, err := m.StartGame(ctx, "alice", "post1")
	if err != nil || !again.GameStarted {
		t.Fatalf("StartGame again: started=%v err=%v", again.GameStarted, err)
	}
	saved, err := svc.LoadPlayerGameboard(ctx, "alice", "post1")
	if err != nil || !saved.GameStarted {
		t.Fatalf("start not persisted: %v", err)
	}
}
