package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rocketscienceinc/snakerunner/internal/config"
	"github.com/rocketscienceinc/snakerunner/internal/entity"
	"github.com/rocketscienceinc/snakerunner/internal/process"
	"github.com/rocketscienceinc/snakerunner/internal/replay"
	"github.com/rocketscienceinc/snakerunner/internal/repository"
	"github.com/rocketscienceinc/snakerunner/internal/repository/storage"
	"github.com/rocketscienceinc/snakerunner/internal/usecase"
)

// GameRequest is a single game from the command line.
type GameRequest struct {
	Scripts []string
	Starts  []entity.Position
	Verbose bool
	LogPath string
}

type MatchRequest struct {
	Scripts []string
}

type ShowRequest struct {
	LogPath string
	Delay   time.Duration
}

// RunGame plays one game and prints its winner.
func RunGame(logger *slog.Logger, conf *config.Config, request GameRequest) error {
	log := logger.With("component", "app", "method", "RunGame")

	ctx, cancel := signalContext(log)
	defer cancel()

	feed, closeFeed, err := openFeed(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeFeed()

	opts := []usecase.GameOption{}
	if feed != nil {
		opts = append(opts, usecase.WithFeed(feed))
	}
	if request.Verbose {
		opts = append(opts, usecase.WithTrace(os.Stdout))
	}

	runner := usecase.NewGameRunner(logger, newSupervisor(logger, conf), opts...)

	result, err := runner.Play(ctx, request.Scripts, usecase.GameSettings{
		Width:        conf.Board.Width,
		Height:       conf.Board.Height,
		Starts:       request.Starts,
		TimeLimit:    conf.TimeLimit,
		StartupGrace: conf.StartupGrace,
		LogPath:      request.LogPath,
	})
	if err != nil {
		return fmt.Errorf("game failed: %w", err)
	}

	printResult(os.Stdout, result)

	return nil
}

// RunMatch plays a match and writes its summary file.
func RunMatch(logger *slog.Logger, conf *config.Config, request MatchRequest) error {
	log := logger.With("component", "app", "method", "RunMatch")

	ctx, cancel := signalContext(log)
	defer cancel()

	feed, closeFeed, err := openFeed(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeFeed()

	gameOpts := []usecase.GameOption{}
	matchOpts := []usecase.MatchOption{}
	if feed != nil {
		gameOpts = append(gameOpts, usecase.WithFeed(feed))
		matchOpts = append(matchOpts, usecase.WithSummaryFeed(feed))
	}

	games := usecase.NewGameRunner(logger, newSupervisor(logger, conf), gameOpts...)
	runner := usecase.NewMatchRunner(logger, games, repository.NewSummaryFile(conf.Match.Summary), matchOpts...)

	result, err := runner.Play(ctx, request.Scripts, usecase.MatchSettings{
		Games: conf.Match.Games,
		Game: usecase.GameSettings{
			Width:        conf.Board.Width,
			Height:       conf.Board.Height,
			TimeLimit:    conf.TimeLimit,
			StartupGrace: conf.StartupGrace,
		},
		LogDir:           conf.Match.LogDir,
		TiebreakAttempts: conf.Match.TiebreakAttempts,
	})
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Player %d (%s) won the match with %d of %d games.\n",
		result.Winner, request.Scripts[result.Winner], result.Stats.Wins[result.Winner], result.Stats.Games)

	return nil
}

// RunShow replays a game log in the terminal.
func RunShow(logger *slog.Logger, request ShowRequest) error {
	log := logger.With("component", "app", "method", "RunShow")

	file, err := os.Open(request.LogPath)
	if err != nil {
		return fmt.Errorf("failed to open game log: %w", err)
	}
	defer file.Close()

	loaded, err := replay.Load(file)
	if err != nil {
		return fmt.Errorf("failed to load game log %s: %w", request.LogPath, err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if err = screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer screen.Fini()

	ctx, cancel := signalContext(log)
	defer cancel()

	return replay.NewViewer(logger, screen, request.Delay).Show(ctx, loaded)
}

func signalContext(log *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigs)

		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// openFeed connects the spectator feed when it is enabled. The returned feed is nil otherwise.
func openFeed(ctx context.Context, logger *slog.Logger, conf *config.Config) (*repository.Feed, func(), error) {
	if !conf.Redis.Enabled {
		return nil, func() {}, nil
	}

	log := logger.With("component", "app", "method", "openFeed")

	redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeFeed := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	log.Info("spectator feed enabled", "addr", conf.Redis.GetRedisAddr(), "prefix", conf.Redis.ChannelPrefix)

	return repository.NewFeed(logger, redisStorage.Connection, conf.Redis.ChannelPrefix), closeFeed, nil
}

func newSupervisor(logger *slog.Logger, conf *config.Config) *process.Supervisor {
	interpreters := make([]process.Interpreter, 0, len(conf.Interpreters))
	for _, interpreter := range conf.Interpreters {
		interpreters = append(interpreters, process.Interpreter{
			Suffix:  interpreter.Suffix,
			Command: interpreter.Command,
			Args:    interpreter.Args,
		})
	}

	return process.NewSupervisor(logger, interpreters)
}

func printResult(out io.Writer, result *usecase.GameResult) {
	if !result.HasWinner() {
		fmt.Fprintln(out, "No player won.")
		return
	}

	fmt.Fprintf(out, "Player %d won!\n", result.Winner)
}
