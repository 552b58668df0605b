package board

// Game configuration constants. The board shape and all probabilities are
// fixed: every player of a given daily game plays the same rules.
const (
	Size                = 10
	InitialAirSupply    = 1500
	LandProbability     = 0.25
	TreasureProbability = 0.1
	MinDepth            = 10
	MaxDepth            = 100
	MinTreasure         = 10
	MaxTreasure         = 100
)

// TileKind distinguishes explorable sea tiles from land.
type TileKind int

const (
	Land TileKind = iota
	Sea
)

func (k TileKind) String() string {
	if k == Land {
		return "land"
	}
	return "sea"
}

// TileStatus is one-directional: Unexplored → Explored, never back.
type TileStatus int

const (
	Unexplored TileStatus = iota
	Explored
)

// Coordinate addresses a tile: Row and Col in [0, Size).
type Coordinate struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type Tile struct {
	Coordinates   Coordinate `json:"coordinates"`
	Kind          TileKind   `json:"kind"`
	Depth         int        `json:"depth"`
	TreasureValue int        `json:"treasureValue"`
	Status        TileStatus `json:"status"`
}

// HasTreasure reports whether the tile holds unclaimed loot at generation time.
func (t Tile) HasTreasure() bool { return t.TreasureValue > 0 }

type Row struct {
	Tiles []Tile `json:"tiles"`
}

// GameBoard is the full per-player game state. The canonical daily board is a
// GameBoard that nobody dives on; each player's progress record starts as a
// value copy of it.
type GameBoard struct {
	Rows               []Row  `json:"rows"`
	LastTileSelected   *Tile  `json:"lastTileSelected"`
	FoundTreasureCount int    `json:"foundTreasureCount"`
	FoundTreasureValue int    `json:"foundTreasureValue"`
	AirSupply          int    `json:"airSupply"`
	GameStarted        bool   `json:"gameStarted"`
	GameOver           bool   `json:"gameOver"`
	GameOverMessage    string `json:"gameOverMessage,omitempty"`
	GameNumber         string `json:"gameNumber"`
	LastMoveTimestamp  int64  `json:"lastMoveTimestamp,omitempty"`
}

// TileAt returns the tile at c. The caller is responsible for supplying a
// coordinate inside the board; this is a contract precondition, not a
// recoverable case.
func (b *GameBoard) TileAt(c Coordinate) Tile {
	return b.Rows[c.Row].Tiles[c.Col]
}

// InBounds reports whether c addresses a tile on this board.
func (b *GameBoard) InBounds(c Coordinate) bool {
	return c.Row >= 0 && c.Row < len(b.Rows) && c.Col >= 0 && c.Col < len(b.Rows[c.Row].Tiles)
}
