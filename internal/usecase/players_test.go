package usecase

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/rocketscienceinc/snakerunner/internal/apperror"
	"github.com/rocketscienceinc/snakerunner/internal/entity"
	"github.com/rocketscienceinc/snakerunner/internal/process"
)

// strategy answers a "move" request; ok=false means stay silent.
type strategy func(turn int) (answer string, ok bool)

func always(direction string) strategy {
	return func(int) (string, bool) { return direction, true }
}

func silent() strategy {
	return func(int) (string, bool) { return "", false }
}

// delayed answers every request with direction after wait.
func delayed(wait time.Duration, direction string) strategy {
	return func(int) (string, bool) {
		time.Sleep(wait)
		return direction, true
	}
}

// fakePlayer is an in-memory player program speaking the line protocol over pipes.
type fakePlayer struct {
	stdinReader  *io.PipeReader
	stdinWriter  *io.PipeWriter
	stdoutReader *io.PipeReader
	stdoutWriter *io.PipeWriter

	mu       sync.Mutex
	received []string
	killed   bool
	once     sync.Once
}

func startFakePlayer(play strategy) *fakePlayer {
	player := &fakePlayer{}
	player.stdinReader, player.stdinWriter = io.Pipe()
	player.stdoutReader, player.stdoutWriter = io.Pipe()

	go player.run(play)

	return player
}

func (that *fakePlayer) Stdin() io.Writer {
	return that.stdinWriter
}

func (that *fakePlayer) Stdout() io.Reader {
	return that.stdoutReader
}

func (that *fakePlayer) Kill() {
	that.once.Do(func() {
		that.mu.Lock()
		that.killed = true
		that.mu.Unlock()

		_ = that.stdinReader.Close()
		_ = that.stdoutWriter.Close()
	})
}

func (that *fakePlayer) Received() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]string(nil), that.received...)
}

func (that *fakePlayer) Killed() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.killed
}

func (that *fakePlayer) run(play strategy) {
	scanner := bufio.NewScanner(that.stdinReader)
	turn := 0

	for scanner.Scan() {
		line := scanner.Text()

		that.mu.Lock()
		that.received = append(that.received, line)
		that.mu.Unlock()

		switch line {
		case "stop":
			// keep draining like a process that has not exited yet
			_, _ = io.Copy(io.Discard, that.stdinReader)
			return
		case "move":
			answer, ok := play(turn)
			turn++
			if !ok {
				continue
			}
			if _, err := io.WriteString(that.stdoutWriter, answer+"\n"); err != nil {
				return
			}
		}
	}
}

// stuckPlayer never reads its stdin: writes succeed until the pipe buffer of capacity bytes is
// full and then block until Kill. Its stdout keeps offering the same answer.
type stuckPlayer struct {
	answer   string
	capacity int

	mu       sync.Mutex
	buffered int
	killed   chan struct{}
	once     sync.Once
}

func newStuckPlayer(answer string, capacity int) *stuckPlayer {
	return &stuckPlayer{answer: answer, capacity: capacity, killed: make(chan struct{})}
}

func (that *stuckPlayer) Stdin() io.Writer {
	return stuckStdin{player: that}
}

func (that *stuckPlayer) Stdout() io.Reader {
	return stuckStdout{player: that}
}

func (that *stuckPlayer) Kill() {
	that.once.Do(func() { close(that.killed) })
}

func (that *stuckPlayer) Killed() bool {
	select {
	case <-that.killed:
		return true
	default:
		return false
	}
}

type stuckStdin struct {
	player *stuckPlayer
}

func (that stuckStdin) Write(p []byte) (int, error) {
	that.player.mu.Lock()
	fits := that.player.buffered+len(p) <= that.player.capacity
	if fits {
		that.player.buffered += len(p)
	}
	that.player.mu.Unlock()

	if fits {
		return len(p), nil
	}

	<-that.player.killed
	return 0, io.ErrClosedPipe
}

type stuckStdout struct {
	player *stuckPlayer
}

func (that stuckStdout) Read(p []byte) (int, error) {
	if that.player.Killed() {
		return 0, io.EOF
	}

	return copy(p, that.player.answer+"\n"), nil
}

// fakeSpawner starts fake players by script name. Players put in fixed are handed out as they are.
type fakeSpawner struct {
	mu         sync.Mutex
	strategies map[string]strategy
	fixed      map[string]process.Player
	spawned    map[string]*fakePlayer
}

func newFakeSpawner(strategies map[string]strategy) *fakeSpawner {
	return &fakeSpawner{
		strategies: strategies,
		spawned:    make(map[string]*fakePlayer),
	}
}

func (that *fakeSpawner) Spawn(_ context.Context, script string) (process.Player, error) {
	if player, ok := that.fixed[script]; ok {
		return player, nil
	}

	play, ok := that.strategies[script]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSpawnFailed, script)
	}

	player := startFakePlayer(play)

	that.mu.Lock()
	that.spawned[script] = player
	that.mu.Unlock()

	return player, nil
}

func (that *fakeSpawner) Player(script string) *fakePlayer {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.spawned[script]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errNoSuchGame = errors.New("no scripted game left")

// scriptedGames plays no real game: each call makes the next listed script win.
// An empty name means nobody wins.
type scriptedGames struct {
	winners  []string
	calls    [][]string
	logPaths []string
}

func (that *scriptedGames) Play(_ context.Context, scripts []string, settings GameSettings) (*GameResult, error) {
	if len(that.winners) == 0 {
		return nil, errNoSuchGame
	}

	winnerScript := that.winners[0]
	that.winners = that.winners[1:]
	that.calls = append(that.calls, append([]string(nil), scripts...))
	that.logPaths = append(that.logPaths, settings.LogPath)

	result := &GameResult{ID: strconv.Itoa(len(that.calls)), Winner: NoWinner}
	for seat, script := range scripts {
		if script == winnerScript {
			result.Winner = seat
			result.Statuses = append(result.Statuses, entity.Alive())
			continue
		}
		result.Statuses = append(result.Statuses, entity.Dead(entity.LosingMove))
	}

	return result, nil
}
