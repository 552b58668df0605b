package divedto

// LeaderboardEntry is a single ranked row from a score-sorted leaderboard.
type LeaderboardEntry struct {
	Member string  `json:"member"`
	Score  float64 `json:"score"`
}
