package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rocketscienceinc/snakerunner/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameLog(t *testing.T) {
	t.Run("Lines are on disk as soon as they are recorded", func(t *testing.T) {
		// Given: a fresh game log
		path := filepath.Join(t.TempDir(), "log.txt")
		gameLog, err := CreateGameLog(path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = gameLog.Close() })

		// When: the header and a move are recorded
		require.NoError(t, gameLog.Record("3,3\n2\n0,0\n2,2"))
		require.NoError(t, gameLog.Record("0:E"))

		// Then: the file already holds both without closing
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "3,3\n2\n0,0\n2,2\n0:E\n", string(content))
	})

	t.Run("Fails when the directory does not exist", func(t *testing.T) {
		_, err := CreateGameLog(filepath.Join(t.TempDir(), "missing", "log.txt"))

		require.Error(t, err)
	})
}

func TestSummaryFile_Save(t *testing.T) {
	// Given: an existing summary
	path := filepath.Join(t.TempDir(), "summary.txt")
	summaryFile := NewSummaryFile(path)
	require.NoError(t, summaryFile.Save(entity.MatchSummary{Games: 3, Wins: []int{2, 1, 0}, Winner: 0}))

	// When: it is saved again after a tiebreaker
	err := summaryFile.Save(entity.MatchSummary{Games: 4, Wins: []int{2, 2}, Winner: 1})

	// Then: the file is rewritten, not appended
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "n_games:4\n0:2\n1:2\nwinner:1\n", string(content))
}

type failingRecorder struct{}

func (failingRecorder) Record(string) error {
	return errors.New("disk full")
}

type collectingRecorder struct {
	lines []string
}

func (that *collectingRecorder) Record(line string) error {
	that.lines = append(that.lines, line)
	return nil
}

func TestRecorders(t *testing.T) {
	// Given: a failing recorder in front of a working one
	collector := &collectingRecorder{}
	recorders := Recorders{failingRecorder{}, collector}

	// When: a line is recorded
	err := recorders.Record("1:W")

	// Then: the working recorder still got it and the failure is reported
	require.Error(t, err)
	assert.Equal(t, []string{"1:W"}, collector.lines)
}
