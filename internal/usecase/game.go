package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/snakerunner/internal/apperror"
	"github.com/rocketscienceinc/snakerunner/internal/entity"
	"github.com/rocketscienceinc/snakerunner/internal/process"
	"github.com/rocketscienceinc/snakerunner/internal/repository"
	"github.com/rocketscienceinc/snakerunner/internal/transport/pipe"
)

// NoWinner is GameResult.Winner when no single player survived.
const NoWinner = -1

// The writer gets drainTurns time limits, and at least minDrainLimit, to flush a finished game.
const (
	drainTurns    = 3
	minDrainLimit = 100 * time.Millisecond
)

var errMoveTimeout = errors.New("no move within the time limit")

type spawner interface {
	Spawn(ctx context.Context, script string) (process.Player, error)
}

type spectatorFeed interface {
	AnnounceGame(ctx context.Context, gameID string, scripts []string) error
	GameRecorder(ctx context.Context, gameID string) *repository.FeedRecorder
}

// GameSettings describes one game. Starts may be nil for random distinct positions.
type GameSettings struct {
	Width        int
	Height       int
	Starts       []entity.Position
	TimeLimit    time.Duration
	StartupGrace int
	LogPath      string
}

type GameResult struct {
	ID       string
	Winner   int
	Statuses []entity.PlayerStatus
}

func (that *GameResult) HasWinner() bool {
	return that.Winner != NoWinner
}

type GameRunner struct {
	logger  *slog.Logger
	spawner spawner
	feed    spectatorFeed
	trace   io.Writer
	rng     *rand.Rand
}

type GameOption func(*GameRunner)

// WithFeed mirrors every game to live spectators.
func WithFeed(feed spectatorFeed) GameOption {
	return func(runner *GameRunner) {
		runner.feed = feed
	}
}

// WithTrace writes every message sent and received, plus the board after each move, to trace.
func WithTrace(trace io.Writer) GameOption {
	return func(runner *GameRunner) {
		runner.trace = trace
	}
}

func WithRand(rng *rand.Rand) GameOption {
	return func(runner *GameRunner) {
		runner.rng = rng
	}
}

func NewGameRunner(logger *slog.Logger, spawner spawner, opts ...GameOption) *GameRunner {
	runner := &GameRunner{
		logger:  logger,
		spawner: spawner,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())), //nolint: gosec // seating, not secrets
	}
	for _, opt := range opts {
		opt(runner)
	}

	return runner
}

// game is the orchestrator's private state for one game.
type game struct {
	board    *entity.Board
	statuses []entity.PlayerStatus
	players  []process.Player
	writer   *pipe.Writer
	reader   *pipe.Reader
	log      *slog.Logger
}

// Play runs one game between scripts; player i is scripts[i]. It fails only for faults that are
// not attributable to a player, such as a program that cannot be started.
func (that *GameRunner) Play(ctx context.Context, scripts []string, settings GameSettings) (*GameResult, error) {
	if len(scripts) < 2 {
		return nil, fmt.Errorf("%w: got %d", apperror.ErrNotEnoughPlayers, len(scripts))
	}

	board, err := that.newBoard(len(scripts), settings)
	if err != nil {
		return nil, err
	}

	gameID := uuid.NewString()
	log := that.logger.With("component", "game", "method", "Play", "game", gameID)

	recorders, closeLog, err := that.openRecorders(ctx, gameID, scripts, settings.LogPath)
	if err != nil {
		return nil, err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	players, err := that.spawnAll(ctx, scripts)
	if err != nil {
		return nil, err
	}

	stdins := make([]io.Writer, len(players))
	stdouts := make([]io.Reader, len(players))
	for i, player := range players {
		stdins[i] = player.Stdin()
		stdouts[i] = player.Stdout()
	}

	current := &game{
		board:    board,
		statuses: make([]entity.PlayerStatus, len(players)),
		players:  players,
		writer:   pipe.NewWriter(that.logger, stdins, recorders, that.trace),
		reader:   pipe.NewReader(stdouts),
		log:      log,
	}
	current.writer.Start()
	current.reader.Start(ctx)

	log.Info("game started", "players", len(players), "width", board.Width(), "height", board.Height())

	loopErr := that.loop(ctx, current, settings)

	for player, status := range current.statuses {
		if status.IsAlive() {
			current.writer.Send(pipe.Kill{Player: player, Terminate: players[player].Kill})
		}
	}
	recordErr := that.closeWriter(current, settings.TimeLimit)
	killAll(players)
	current.reader.Close()

	if loopErr != nil {
		return nil, loopErr
	}
	if recordErr != nil {
		return nil, fmt.Errorf("failed to record game: %w", recordErr)
	}

	result := &GameResult{ID: gameID, Winner: NoWinner, Statuses: current.statuses}
	if entity.CountAlive(current.statuses) == 1 {
		for player, status := range current.statuses {
			if status.IsAlive() {
				result.Winner = player
			}
		}
	}

	log.Info("game finished", "winner", result.Winner)

	return result, nil
}

// loop asks the alive players for moves in ascending id order until at most one is left.
func (that *GameRunner) loop(ctx context.Context, current *game, settings GameSettings) error {
	that.tracef("%s\n", current.board.Setup())
	current.writer.Send(pipe.SendHeader{Header: current.board.Setup().String()})

	firstTurn := true
	for {
		that.tracef("\nRemaining players: %v\n", alivePlayers(current.statuses))

		for player := range current.statuses {
			if entity.CountAlive(current.statuses) < 2 {
				return nil
			}
			if !current.statuses[player].IsAlive() {
				continue
			}

			timeout := settings.TimeLimit
			if firstTurn {
				timeout *= time.Duration(max(settings.StartupGrace, 1))
				firstTurn = false
			}

			current.writer.Send(pipe.AskMove{Player: player})
			seq := current.reader.Request(player)

			line, err := that.await(ctx, current, seq, timeout)
			if errors.Is(err, errMoveTimeout) {
				that.tracef("Killing player %d due to timeout\n", player)
				current.players[player].Kill()
				that.eliminate(current, player, entity.TimeOut, false)
				continue
			}
			if err != nil {
				return fmt.Errorf("game interrupted: %w", err)
			}

			that.tracef("<-p%d  %q\n", player, strings.TrimSpace(line))
			that.applyMove(current, player, line)
			that.tracef("%s\n", current.board)
		}
	}
}

func (that *GameRunner) applyMove(current *game, player int, line string) {
	direction, err := entity.ParseDirection(strings.TrimSpace(line))
	if err != nil {
		that.tracef("Killing player %d due to invalid input\n", player)
		that.eliminate(current, player, entity.InvalidInput, true)
		return
	}

	accepted := current.board.MovePlayer(player, direction)

	// opponents learn even a fatal move so the log replays exactly
	current.writer.Send(pipe.CommunicateMove{Player: player, Direction: direction})

	if !accepted {
		that.tracef("Killing player %d due to losing move\n", player)
		that.eliminate(current, player, entity.LosingMove, true)
	}
}

// eliminate flips the player to dead and has the writer stop it. When terminate is set the
// process is killed right after its stop message.
func (that *GameRunner) eliminate(current *game, player int, cause entity.LossReason, terminate bool) {
	current.statuses[player] = entity.Dead(cause)
	current.board.Eliminate(player)

	kill := pipe.Kill{Player: player}
	if terminate {
		kill.Terminate = current.players[player].Kill
	}
	current.writer.Send(kill)

	current.log.Info("player eliminated", "player", player, "cause", cause.String())
}

// await waits for the answer to request seq. Lines answering older requests belong to players
// that are already dead and are dropped.
func (that *GameRunner) await(ctx context.Context, current *game, seq uint64, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case line := <-current.reader.Lines():
			if line.Seq != seq {
				current.log.Debug("discarding stale line", "player", line.Player, "line", line.Text)
				continue
			}
			return line.Text, nil
		case <-timer.C:
			return "", errMoveTimeout
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func (that *GameRunner) newBoard(players int, settings GameSettings) (*entity.Board, error) {
	starts := settings.Starts
	if starts == nil {
		var err error
		starts, err = entity.RandomPositions(that.rng, settings.Width, settings.Height, players)
		if err != nil {
			return nil, fmt.Errorf("failed to place players: %w", err)
		}
	}

	if len(starts) != players {
		return nil, fmt.Errorf("%w: %d start positions for %d players", apperror.ErrInvalidPosition, len(starts), players)
	}

	board, err := entity.NewBoard(settings.Width, settings.Height, starts)
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	return board, nil
}

// closeWriter waits for the writer to drain. A player that stopped reading its stdin can block
// the writer for good, so after drainLimit every player is killed, which fails the blocked write.
func (that *GameRunner) closeWriter(current *game, timeLimit time.Duration) error {
	closed := make(chan error, 1)
	go func() {
		closed <- current.writer.Close()
	}()

	timer := time.NewTimer(drainLimit(timeLimit))
	defer timer.Stop()

	select {
	case err := <-closed:
		return err
	case <-timer.C:
		current.log.Warn("writer blocked on player input, killing all players")
		killAll(current.players)
		return <-closed
	}
}

func drainLimit(timeLimit time.Duration) time.Duration {
	return max(drainTurns*timeLimit, minDrainLimit)
}

func killAll(players []process.Player) {
	for _, player := range players {
		player.Kill()
	}
}

// spawnAll starts one process per script. If any fails, the ones already running are killed.
func (that *GameRunner) spawnAll(ctx context.Context, scripts []string) ([]process.Player, error) {
	players := make([]process.Player, 0, len(scripts))
	for _, script := range scripts {
		player, err := that.spawner.Spawn(ctx, script)
		if err != nil {
			killAll(players)
			return nil, fmt.Errorf("failed to start game: %w", err)
		}
		players = append(players, player)
	}

	return players, nil
}

func (that *GameRunner) openRecorders(
	ctx context.Context, gameID string, scripts []string, logPath string,
) (repository.Recorders, func(), error) {
	log := that.logger.With("component", "game", "method", "openRecorders", "game", gameID)

	var recorders repository.Recorders
	closeLog := func() {}

	if logPath != "" {
		gameLog, err := repository.CreateGameLog(logPath)
		if err != nil {
			return nil, nil, err
		}
		recorders = append(recorders, gameLog)
		closeLog = func() {
			if err := gameLog.Close(); err != nil {
				log.Error("could not close game log", "error", err)
			}
		}
	}

	if that.feed != nil {
		if err := that.feed.AnnounceGame(ctx, gameID, scripts); err != nil {
			log.Warn("could not announce game", "error", err)
		}
		recorders = append(recorders, that.feed.GameRecorder(ctx, gameID))
	}

	return recorders, closeLog, nil
}

func (that *GameRunner) tracef(format string, args ...any) {
	if that.trace != nil {
		fmt.Fprintf(that.trace, format, args...)
	}
}

func alivePlayers(statuses []entity.PlayerStatus) []int {
	var alive []int
	for player, status := range statuses {
		if status.IsAlive() {
			alive = append(alive, player)
		}
	}

	return alive
}
