package board

import (
	"hash/fnv"
	"math/rand"
)

// Generate produces a fresh board for the given game number. Generation is
// seeded from the game number, so regenerating the same daily board yields the
// same grid. Total over any string input.
func Generate(gameNumber string) GameBoard {
	rng := rand.New(rand.NewSource(seedFor(gameNumber)))

	rows := make([]Row, Size)
	for r := 0; r < Size; r++ {
		tiles := make([]Tile, Size)
		for c := 0; c < Size; c++ {
			tiles[c] = generateTile(rng, Coordinate{Row: r, Col: c})
		}
		rows[r] = Row{Tiles: tiles}
	}

	return GameBoard{
		Rows:       rows,
		AirSupply:  InitialAirSupply,
		GameNumber: gameNumber,
	}
}

func generateTile(rng *rand.Rand, c Coordinate) Tile {
	kind := Sea
	if rng.Float64() < LandProbability {
		kind = Land
	}
	t := Tile{Coordinates: c, Kind: kind, Status: Unexplored}
	if kind == Sea {
		t.Depth = randomInRange(rng, MinDepth, MaxDepth)
		if rng.Float64() < TreasureProbability {
			t.TreasureValue = randomInRange(rng, MinTreasure, MaxTreasure)
		}
	}
	return t
}

// randomInRange returns a uniform integer in [min, max].
func randomInRange(rng *rand.Rand, min, max int) int {
	return min + rng.Intn(max-min+1)
}

func seedFor(gameNumber string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("treasure-quest:"))
	_, _ = h.Write([]byte(gameNumber))
	return int64(h.Sum64())
}
