package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchStats_Update(t *testing.T) {
	// Given: stats for three players
	stats := NewMatchStats(3)

	// When: two games are recorded
	stats.Update([]PlayerStatus{Alive(), Dead(TimeOut), Dead(LosingMove)})
	stats.Update([]PlayerStatus{Dead(InvalidInput), Dead(LosingMove), Dead(LosingMove)})

	// Then: every cause is counted once per game
	assert.Equal(t, 2, stats.Games)
	assert.Equal(t, []int{1, 0, 0}, stats.Wins)
	assert.Equal(t, []int{0, 1, 0}, stats.Timeouts)
	assert.Equal(t, []int{1, 0, 0}, stats.InvalidInputs)
	assert.Equal(t, []int{0, 1, 2}, stats.LosingMoves)
}

func TestMatchStats_MostWins(t *testing.T) {
	t.Run("Single leader", func(t *testing.T) {
		stats := NewMatchStats(3)
		stats.Wins = []int{1, 4, 2}

		assert.Equal(t, []int{1}, stats.MostWins())
	})

	t.Run("Tied leaders in ascending order", func(t *testing.T) {
		stats := NewMatchStats(4)
		stats.Wins = []int{3, 1, 3, 0}

		assert.Equal(t, []int{0, 2}, stats.MostWins())
	})

	t.Run("Nobody won anything", func(t *testing.T) {
		stats := NewMatchStats(2)

		assert.Equal(t, []int{0, 1}, stats.MostWins())
	})
}

func TestMatchSummary_String(t *testing.T) {
	stats := NewMatchStats(2)
	stats.Update([]PlayerStatus{Dead(LosingMove), Alive()})
	stats.Update([]PlayerStatus{Dead(TimeOut), Alive()})

	assert.Equal(t, "n_games:2\n0:0\n1:2\nwinner:1\n", stats.Summary(1).String())
}
