package entity

import (
	"fmt"
	"strings"
)

// MatchStats accumulates per-player outcomes over a match, indexed by script order.
type MatchStats struct {
	Wins          []int
	Timeouts      []int
	InvalidInputs []int
	LosingMoves   []int
	Games         int
}

func NewMatchStats(players int) *MatchStats {
	return &MatchStats{
		Wins:          make([]int, players),
		Timeouts:      make([]int, players),
		InvalidInputs: make([]int, players),
		LosingMoves:   make([]int, players),
	}
}

// Update records one finished game. A player still alive at the end is counted as the winner,
// which can only happen when exactly one player survived.
func (that *MatchStats) Update(statuses []PlayerStatus) {
	that.Games++

	for player, status := range statuses {
		if status.IsAlive() {
			that.Wins[player]++
			continue
		}

		switch status.Cause {
		case TimeOut:
			that.Timeouts[player]++
		case InvalidInput:
			that.InvalidInputs[player]++
		case LosingMove:
			that.LosingMoves[player]++
		}
	}
}

// MostWins returns every player sharing the highest win count, in ascending order.
func (that *MatchStats) MostWins() []int {
	if len(that.Wins) == 0 {
		return nil
	}

	best := that.Wins[0]
	for _, wins := range that.Wins[1:] {
		best = max(best, wins)
	}

	var tied []int
	for player, wins := range that.Wins {
		if wins == best {
			tied = append(tied, player)
		}
	}

	return tied
}

// Summary snapshots the stats with the declared match winner.
func (that *MatchStats) Summary(winner int) MatchSummary {
	wins := make([]int, len(that.Wins))
	copy(wins, that.Wins)

	return MatchSummary{Games: that.Games, Wins: wins, Winner: winner}
}

// MatchSummary is the record written to the summary file.
type MatchSummary struct {
	Games  int
	Wins   []int
	Winner int
}

func (that MatchSummary) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "n_games:%d\n", that.Games)
	for player, wins := range that.Wins {
		fmt.Fprintf(&sb, "%d:%d\n", player, wins)
	}
	fmt.Fprintf(&sb, "winner:%d\n", that.Winner)

	return sb.String()
}
