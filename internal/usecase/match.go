package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/rocketscienceinc/snakerunner/internal/apperror"
	"github.com/rocketscienceinc/snakerunner/internal/entity"
)

type gamePlayer interface {
	Play(ctx context.Context, scripts []string, settings GameSettings) (*GameResult, error)
}

type summaryStore interface {
	Save(summary entity.MatchSummary) error
}

type summaryFeed interface {
	PublishSummary(ctx context.Context, summary entity.MatchSummary) error
}

type MatchSettings struct {
	Games            int
	Game             GameSettings
	LogDir           string
	TiebreakAttempts int
}

type MatchResult struct {
	Winner int
	Stats  *entity.MatchStats
}

type MatchRunner struct {
	logger  *slog.Logger
	games   gamePlayer
	summary summaryStore
	feed    summaryFeed
	rng     *rand.Rand
}

type MatchOption func(*MatchRunner)

func WithSummaryFeed(feed summaryFeed) MatchOption {
	return func(runner *MatchRunner) {
		runner.feed = feed
	}
}

func WithSeatingRand(rng *rand.Rand) MatchOption {
	return func(runner *MatchRunner) {
		runner.rng = rng
	}
}

func NewMatchRunner(logger *slog.Logger, games gamePlayer, summary summaryStore, opts ...MatchOption) *MatchRunner {
	runner := &MatchRunner{
		logger:  logger.With("component", "match"),
		games:   games,
		summary: summary,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())), //nolint: gosec // seating, not secrets
	}
	for _, opt := range opts {
		opt(runner)
	}

	return runner
}

// outcome is one game's result translated back to script order.
type outcome struct {
	statuses []entity.PlayerStatus
	winner   int
}

// Play runs the configured number of games between scripts, each with fresh random seating,
// and declares the script with most wins the match winner. Ties go to tiebreaker games.
func (that *MatchRunner) Play(ctx context.Context, scripts []string, settings MatchSettings) (*MatchResult, error) {
	log := that.logger.With("method", "Play")

	if len(scripts) == 0 {
		return nil, apperror.ErrNoScripts
	}
	if len(scripts) < 2 {
		return nil, fmt.Errorf("%w: got %d", apperror.ErrNotEnoughPlayers, len(scripts))
	}

	if settings.LogDir != "" {
		if err := os.MkdirAll(settings.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create game log directory: %w", err)
		}
	}

	stats := entity.NewMatchStats(len(scripts))
	gameNo := 0

	for range settings.Games {
		result, err := that.playSeated(ctx, scripts, settings, gameNo)
		if err != nil {
			return nil, err
		}
		gameNo++

		stats.Update(result.statuses)
		log.Info("game done", "game", gameNo, "winner", result.winner)
	}

	tied := stats.MostWins()
	if len(tied) == 1 {
		return that.declare(ctx, stats, tied[0])
	}

	log.Info("tie for most wins", "players", tied)

	for attempt := range settings.TiebreakAttempts {
		result, err := that.playSeated(ctx, scripts, settings, gameNo)
		if err != nil {
			return nil, err
		}
		gameNo++

		stats.Update(result.statuses)
		if result.winner != NoWinner {
			log.Info("tiebreaker decided", "attempt", attempt+1, "winner", result.winner)
			return that.declare(ctx, stats, result.winner)
		}

		log.Info("tiebreaker without winner", "attempt", attempt+1)
	}

	log.Warn("no tiebreaker was decisive, falling back to first tied player", "winner", tied[0])

	return that.declare(ctx, stats, tied[0])
}

// playSeated plays one game with a random script-to-seat assignment and maps the result back.
func (that *MatchRunner) playSeated(
	ctx context.Context, scripts []string, settings MatchSettings, gameNo int,
) (*outcome, error) {
	seating := that.rng.Perm(len(scripts)) // seat -> script

	seated := make([]string, len(scripts))
	for seat, script := range seating {
		seated[seat] = scripts[script]
	}

	gameSettings := settings.Game
	gameSettings.Starts = nil
	gameSettings.LogPath = ""
	if settings.LogDir != "" {
		gameSettings.LogPath = filepath.Join(settings.LogDir, fmt.Sprintf("log%d.txt", gameNo))
	}

	result, err := that.games.Play(ctx, seated, gameSettings)
	if err != nil {
		return nil, fmt.Errorf("failed to play game %d: %w", gameNo, err)
	}

	unseated := &outcome{
		statuses: make([]entity.PlayerStatus, len(scripts)),
		winner:   NoWinner,
	}
	for seat, script := range seating {
		unseated.statuses[script] = result.Statuses[seat]
	}
	if result.HasWinner() {
		unseated.winner = seating[result.Winner]
	}

	return unseated, nil
}

func (that *MatchRunner) declare(ctx context.Context, stats *entity.MatchStats, winner int) (*MatchResult, error) {
	summary := stats.Summary(winner)

	if err := that.summary.Save(summary); err != nil {
		return nil, err
	}

	if that.feed != nil {
		if err := that.feed.PublishSummary(ctx, summary); err != nil {
			that.logger.Warn("could not publish match summary", "error", err)
		}
	}

	return &MatchResult{Winner: winner, Stats: stats}, nil
}
