package board

import (
	"reflect"
	"testing"
)

func TestGenerateProperties(t *testing.T) {
	for _, gameNumber := range []string{"1", "2", "77", "test"} {
		b := Generate(gameNumber)
		if len(b.Rows) != Size {
			t.Fatalf("game %s: expected %d rows, got %d", gameNumber, Size, len(b.Rows))
		}
		if b.AirSupply != InitialAirSupply {
			t.Fatalf("game %s: air=%d, want %d", gameNumber, b.AirSupply, InitialAirSupply)
		}
		if b.GameOver || b.GameStarted {
			t.Fatalf("game %s: fresh board must not be started or over", gameNumber)
		}
		if b.GameNumber != gameNumber {
			t.Fatalf("game number not carried: %q", b.GameNumber)
		}
		if b.LastTileSelected != nil || b.FoundTreasureCount != 0 || b.FoundTreasureValue != 0 {
			t.Fatalf("game %s: aggregates not zeroed", gameNumber)
		}
		for r, row := range b.Rows {
			if len(row.Tiles) != Size {
				t.Fatalf("game %s row %d: expected %d tiles, got %d", gameNumber, r, Size, len(row.Tiles))
			}
			for c, tile := range row.Tiles {
				if tile.Coordinates != (Coordinate{Row: r, Col: c}) {
					t.Fatalf("tile coordinate mismatch at %d,%d: %+v", r, c, tile.Coordinates)
				}
				if tile.Status != Unexplored {
					t.Fatalf("tile %d,%d not unexplored at creation", r, c)
				}
				switch tile.Kind {
				case Land:
					if tile.Depth != 0 || tile.TreasureValue != 0 {
						t.Fatalf("land tile %d,%d has depth=%d value=%d", r, c, tile.Depth, tile.TreasureValue)
					}
				case Sea:
					if tile.Depth < MinDepth || tile.Depth > MaxDepth {
						t.Fatalf("sea tile %d,%d depth out of range: %d", r, c, tile.Depth)
					}
					if tile.TreasureValue != 0 && (tile.TreasureValue < MinTreasure || tile.TreasureValue > MaxTreasure) {
						t.Fatalf("sea tile %d,%d treasure out of range: %d", r, c, tile.TreasureValue)
					}
				}
			}
		}
	}
}

func TestGenerateDeterministicPerGameNumber(t *testing.T) {
	a := Generate("42")
	b := Generate("42")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same game number produced different boards")
	}
	c := Generate("43")
	if reflect.DeepEqual(a, c) {
		t.Fatalf("different game numbers produced identical boards")
	}
}

// seaBoard builds a Size×Size all-sea board with a fixed depth for tests.
func seaBoard(depth int) GameBoard {
	rows := make([]Row, Size)
	for r := 0; r < Size; r++ {
		tiles := make([]Tile, Size)
		for c := 0; c < Size; c++ {
			tiles[c] = Tile{
				Coordinates: Coordinate{Row: r, Col: c},
				Kind:        Sea,
				Depth:       depth,
				Status:      Unexplored,
			}
		}
		rows[r] = Row{Tiles: tiles}
	}
	return GameBoard{Rows: rows, AirSupply: InitialAirSupply, GameNumber: "test"}
}

func TestUpdateTileStatusIsPure(t *testing.T) {
	b := seaBoard(30)
	target := Coordinate{Row: 2, Col: 5}

	updated := UpdateTileStatus(b, target, Explored)
	if b.TileAt(target).Status != Unexplored {
		t.Fatalf("input board mutated")
	}
	if updated.TileAt(target).Status != Explored {
		t.Fatalf("target tile not updated")
	}
	for r, row := range updated.Rows {
		for c, tile := range row.Tiles {
			if (r != target.Row || c != target.Col) && tile.Status != Unexplored {
				t.Fatalf("tile %d,%d changed unexpectedly", r, c)
			}
		}
	}

	twice := UpdateTileStatus(updated, target, Explored)
	if !reflect.DeepEqual(updated, twice) {
		t.Fatalf("UpdateTileStatus not idempotent")
	}
}

func TestTreasureCount(t *testing.T) {
	b := seaBoard(20)
	if got := TreasureCount(&b); got != 0 {
		t.Fatalf("empty board treasure count = %d", got)
	}
	b.Rows[0].Tiles[3].TreasureValue = 50
	b.Rows[4].Tiles[9].TreasureValue = 10
	b.Rows[9].Tiles[0].TreasureValue = 100
	if got := TreasureCount(&b); got != 3 {
		t.Fatalf("treasure count = %d, want 3", got)
	}
	// Pure: repeated calls agree.
	if TreasureCount(&b) != 3 {
		t.Fatalf("treasure count changed between calls")
	}
}

func TestTreasureHintFound(t *testing.T) {
	b := seaBoard(20)
	h := TreasureHint(&b, b.TileAt(Coordinate{Row: 1, Col: 1}), 40)
	if h.TreasureFound != 40 || h.HasLead {
		t.Fatalf("unexpected hint for successful dive: %+v", h)
	}
}

func TestTreasureHintDirection(t *testing.T) {
	b := seaBoard(20)
	b.Rows[3].Tiles[1].TreasureValue = 25
	last := b.TileAt(Coordinate{Row: 3, Col: 6})

	h := TreasureHint(&b, last, 0)
	if !h.HasLead || h.Toward != West {
		t.Fatalf("expected west lead, got %+v", h)
	}

	// The first matching tile in column order decides, even when another
	// treasure tile sits east of the diver.
	b.Rows[3].Tiles[8].TreasureValue = 90
	h = TreasureHint(&b, last, 0)
	if !h.HasLead || h.Toward != West {
		t.Fatalf("expected first-match west lead, got %+v", h)
	}

	// Explored treasure in the row is no longer a lead.
	b.Rows[3].Tiles[1].Status = Explored
	h = TreasureHint(&b, last, 0)
	if !h.HasLead || h.Toward != East {
		t.Fatalf("expected east lead after west tile explored, got %+v", h)
	}
}

func TestTreasureHintDark(t *testing.T) {
	b := seaBoard(20)
	// Treasure elsewhere on the board does not light up this row.
	b.Rows[5].Tiles[5].TreasureValue = 60
	h := TreasureHint(&b, b.TileAt(Coordinate{Row: 2, Col: 2}), 0)
	if h.HasLead || h.TreasureFound != 0 {
		t.Fatalf("expected dark hint, got %+v", h)
	}
}

func TestTreasureHintIgnoresOwnColumn(t *testing.T) {
	b := seaBoard(20)
	b.Rows[2].Tiles[2].TreasureValue = 30
	h := TreasureHint(&b, b.TileAt(Coordinate{Row: 2, Col: 2}), 0)
	if h.HasLead {
		t.Fatalf("own column must not count as a lead: %+v", h)
	}
}
