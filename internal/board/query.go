package board

// UpdateTileStatus returns a copy of the board with the tile at c set to
// status. No other tile is touched. c must be in bounds (caller contract).
func UpdateTileStatus(b GameBoard, c Coordinate, status TileStatus) GameBoard {
	rows := make([]Row, len(b.Rows))
	for r := range b.Rows {
		tiles := make([]Tile, len(b.Rows[r].Tiles))
		copy(tiles, b.Rows[r].Tiles)
		rows[r] = Row{Tiles: tiles}
	}
	rows[c.Row].Tiles[c.Col].Status = status
	b.Rows = rows
	return b
}

// TreasureCount counts the tiles on the whole board holding treasure.
func TreasureCount(b *GameBoard) int {
	n := 0
	for _, row := range b.Rows {
		for _, t := range row.Tiles {
			if t.HasTreasure() {
				n++
			}
		}
	}
	return n
}

// Direction points a diver along the row toward undiscovered treasure.
type Direction string

const (
	West Direction = "west"
	East Direction = "east"
)

// Hint is the post-dive compass reading. TreasureFound is the value grabbed on
// the dive itself; when zero, HasLead says whether an unexplored treasure tile
// remains in the same row and Toward gives its bearing.
type Hint struct {
	TreasureFound int
	HasLead       bool
	Toward        Direction
}

// TreasureHint scans the row containing last for the first unexplored treasure
// tile in a different column. Only the first match in column order counts,
// even if the row holds several.
func TreasureHint(b *GameBoard, last Tile, treasureFound int) Hint {
	if treasureFound > 0 {
		return Hint{TreasureFound: treasureFound}
	}
	for _, t := range b.Rows[last.Coordinates.Row].Tiles {
		if t.Status != Unexplored || !t.HasTreasure() || t.Coordinates.Col == last.Coordinates.Col {
			continue
		}
		h := Hint{HasLead: true, Toward: East}
		if t.Coordinates.Col < last.Coordinates.Col {
			h.Toward = West
		}
		return h
	}
	return Hint{}
}
