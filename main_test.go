package main

import (
	"testing"
	"time"

	app "github.com/rocketscienceinc/snakerunner/internal"
	"github.com/rocketscienceinc/snakerunner/internal/config"
	"github.com/rocketscienceinc/snakerunner/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Board:     config.Board{Width: 10, Height: 10},
		TimeLimit: 100 * time.Millisecond,
		Match:     config.Match{Games: 10, Summary: "summary.txt"},
	}
}

func TestExpandLists(t *testing.T) {
	got := expandLists([]string{"-s", "a.py", "b", "-p", "1,2", "3,4", "-x", "5", "-v"}, "s", "p")

	assert.Equal(t, []string{"-s", "a.py", "-s", "b", "-p", "1,2", "-p", "3,4", "-x", "5", "-v"}, got)
}

func TestParseRun(t *testing.T) {
	t.Run("Reads scripts, starts and overrides", func(t *testing.T) {
		// Given: a run command line
		conf := testConfig()
		args := []string{"-s", "a.py", "b", "-p", "1,2", "3,4", "-x", "20", "-y", "15", "-t", "250ms", "-v", "-o", "game.txt"}

		// When: it is parsed
		request, err := parseRun(conf, args)

		// Then: the request and the configuration carry every value
		require.NoError(t, err)
		assert.Equal(t, app.GameRequest{
			Scripts: []string{"a.py", "b"},
			Starts:  []entity.Position{{X: 1, Y: 2}, {X: 3, Y: 4}},
			Verbose: true,
			LogPath: "game.txt",
		}, request)
		assert.Equal(t, config.Board{Width: 20, Height: 15}, conf.Board)
		assert.Equal(t, 250*time.Millisecond, conf.TimeLimit)
	})

	t.Run("Keeps configured values that are not given", func(t *testing.T) {
		conf := testConfig()

		request, err := parseRun(conf, []string{"-s", "a", "b"})

		require.NoError(t, err)
		assert.Nil(t, request.Starts)
		assert.Equal(t, "log.txt", request.LogPath)
		assert.Equal(t, config.Board{Width: 10, Height: 10}, conf.Board)
	})

	t.Run("Rejects a command line without scripts", func(t *testing.T) {
		_, err := parseRun(testConfig(), []string{"-x", "4"})

		require.ErrorIs(t, err, errUsage)
	})

	t.Run("Rejects malformed start positions", func(t *testing.T) {
		_, err := parseRun(testConfig(), []string{"-s", "a", "b", "-p", "1;2", "3,4"})

		require.ErrorIs(t, err, errUsage)
	})
}

func TestParseMatch(t *testing.T) {
	conf := testConfig()

	request, err := parseMatch(conf, []string{"-s", "a", "b", "c", "-n", "4", "-o", "out.txt", "-l", "logs"})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, request.Scripts)
	assert.Equal(t, config.Match{Games: 4, Summary: "out.txt", LogDir: "logs"}, conf.Match)
}

func TestParseShow(t *testing.T) {
	request, err := parseShow([]string{"-i", "game.txt", "-t", "0"})

	require.NoError(t, err)
	assert.Equal(t, app.ShowRequest{LogPath: "game.txt", Delay: 0}, request)
}

func TestRunCommand_unknown(t *testing.T) {
	err := runCommand(nil, testConfig(), "dance", nil)

	require.ErrorIs(t, err, errUsage)
}
