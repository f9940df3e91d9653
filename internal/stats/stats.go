// Package stats implements the scoreboard's aggregation engine: per-player
// win/points folds, badge classification, streak detection and head-to-head
// histories. All functions are pure; callers fetch rows from the store and
// choose the iteration order, which is a semantic contract for the per-player
// game cap (rows beyond the cap are skipped in iteration order).
package stats

import (
	"math"
	"sort"

	"github.com/mauv0809/kart-scoreboard/internal/scoreboard"
)

// PlayerStats is one player's aggregate over a set of score rows.
type PlayerStats struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Wins   int64   `json:"wins"`
	Points int64   `json:"points"`
	Games  int64   `json:"games"`
	StdDev float64 `json:"stdDev"`
}

type accumulator struct {
	name   string
	wins   int64
	points int64
	games  int64
	sumSq  float64
}

// Aggregate folds score rows into per-player statistics. A row counts as a
// win iff its points equal the per-game maximum. limit > 0 caps each player
// to their first limit rows in iteration order. Players with no rows are not
// emitted. The result is sorted by player id.
func Aggregate(rows []scoreboard.ScoreRow, maxScores map[int64]int64, limit int) []PlayerStats {
	players := make(map[int64]*accumulator)
	for _, row := range rows {
		acc, ok := players[row.PlayerID]
		if !ok {
			acc = &accumulator{name: row.PlayerName}
			players[row.PlayerID] = acc
		}

		// Skip if we already have the capped number of games.
		if limit > 0 && acc.games >= int64(limit) {
			continue
		}

		if maxScores[row.GameID] == row.Points {
			acc.wins++
		}
		acc.games++
		acc.points += row.Points
		acc.sumSq += float64(row.Points) * float64(row.Points)
	}

	result := make([]PlayerStats, 0, len(players))
	for id, acc := range players {
		result = append(result, PlayerStats{
			ID:     id,
			Name:   acc.name,
			Wins:   acc.wins,
			Points: acc.points,
			Games:  acc.games,
			StdDev: stdDevFromSums(float64(acc.points), acc.sumSq, acc.games),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// stdDevFromSums computes the population standard deviation in closed form
// from a sum and a sum of squares.
func stdDevFromSums(sum, sumSq float64, n int64) float64 {
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	// Rounding can push the variance a hair below zero.
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// SkipGame removes all rows belonging to the given game. A zero gameID
// matches no row, so skipping the most recent game of an empty group is a
// no-op.
func SkipGame(rows []scoreboard.ScoreRow, gameID int64) []scoreboard.ScoreRow {
	if gameID == 0 {
		return rows
	}
	filtered := make([]scoreboard.ScoreRow, 0, len(rows))
	for _, row := range rows {
		if row.GameID != gameID {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// BadgeCounts tallies how often a player's scores reached each tier.
type BadgeCounts struct {
	Star   int `json:"star"`
	Gold   int `json:"gold"`
	Silver int `json:"silver"`
	Bronze int `json:"bronze"`
}

// Badges classifies every score against the group's maximum possible score.
// Tiers are mutually exclusive and ordered highest-first: star >= 100%,
// gold >= 94%, silver >= 88%, bronze >= 83%.
func Badges(scores []int64, maxScore int64) BadgeCounts {
	starScore := float64(maxScore)
	goldScore := 0.94 * starScore
	silverScore := 0.88 * starScore
	bronzeScore := 0.83 * starScore

	var badges BadgeCounts
	for _, s := range scores {
		score := float64(s)
		switch {
		case score >= starScore:
			badges.Star++
		case score >= goldScore:
			badges.Gold++
		case score >= silverScore:
			badges.Silver++
		case score >= bronzeScore:
			badges.Bronze++
		}
	}
	return badges
}

// Streak is a contiguous run of scores with its mean and population
// standard deviation.
type Streak struct {
	Scores []int64 `json:"scores"`
	Avg    float64 `json:"avg"`
	StdDev float64 `json:"stdDev"`
}

// BestStreak finds the highest-sum window of length n in a chronologically
// ascending score history. Ties go to the earliest window. n <= 0 treats the
// whole history as the streak. A history shorter than n (including an empty
// one) yields the empty streak rather than an error.
func BestStreak(scores []int64, n int) Streak {
	window := scores
	if n > 0 {
		if len(scores) < n {
			return Streak{Scores: []int64{}}
		}

		var windowSum int64
		for _, s := range scores[:n] {
			windowSum += s
		}
		bestStart, bestSum := 0, windowSum
		for i := n; i < len(scores); i++ {
			windowSum += scores[i] - scores[i-n]
			// Strictly greater keeps the earliest window on ties.
			if windowSum > bestSum {
				bestStart, bestSum = i-n+1, windowSum
			}
		}
		window = scores[bestStart : bestStart+n]
	}

	if len(window) == 0 {
		return Streak{Scores: []int64{}}
	}

	var sum int64
	for _, s := range window {
		sum += s
	}
	avg := float64(sum) / float64(len(window))

	var sqDiff float64
	for _, s := range window {
		d := float64(s) - avg
		sqDiff += d * d
	}

	return Streak{
		Scores: window,
		Avg:    avg,
		StdDev: math.Sqrt(sqDiff / float64(len(window))),
	}
}

// History is one player's raw score sequence over a set of common games.
type History struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	History []int64 `json:"history"`
}

// Histories collects per-player score sequences from rows ordered
// most-recent-first, capping each player at limit rows when limit > 0, then
// reverses them to chronological order. The result is sorted by player id.
func Histories(rows []scoreboard.ScoreRow, limit int) []History {
	players := make(map[int64]*History)
	for _, row := range rows {
		h, ok := players[row.PlayerID]
		if !ok {
			h = &History{ID: row.PlayerID, Name: row.PlayerName, History: []int64{}}
			players[row.PlayerID] = h
		}
		if limit > 0 && len(h.History) >= limit {
			continue
		}
		h.History = append(h.History, row.Points)
	}

	result := make([]History, 0, len(players))
	for _, h := range players {
		for i, j := 0, len(h.History)-1; i < j; i, j = i+1, j-1 {
			h.History[i], h.History[j] = h.History[j], h.History[i]
		}
		result = append(result, *h)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
