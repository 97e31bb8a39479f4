package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/snakerunner/internal/entity"
)

// publishTimeout bounds one game line publish. The client must have ContextTimeoutEnabled.
const publishTimeout = 200 * time.Millisecond

// GameAnnouncement is published on the games channel when a game starts, so spectators
// can subscribe to its move channel.
type GameAnnouncement struct {
	ID      string   `json:"id"`
	Channel string   `json:"channel"`
	Scripts []string `json:"scripts"`
}

// Feed mirrors game records to Redis Pub/Sub for live spectators. Nothing is stored in Redis.
type Feed struct {
	logger *slog.Logger
	client *redis.Client
	prefix string
}

func NewFeed(logger *slog.Logger, client *redis.Client, prefix string) *Feed {
	return &Feed{
		logger: logger.With("component", "feed"),
		client: client,
		prefix: prefix,
	}
}

func (that *Feed) GameChannel(gameID string) string {
	return that.prefix + ":game:" + gameID
}

func (that *Feed) GamesChannel() string {
	return that.prefix + ":games"
}

func (that *Feed) MatchChannel() string {
	return that.prefix + ":match"
}

func (that *Feed) AnnounceGame(ctx context.Context, gameID string, scripts []string) error {
	announcement, err := json.Marshal(GameAnnouncement{
		ID:      gameID,
		Channel: that.GameChannel(gameID),
		Scripts: scripts,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal game announcement: %w", err)
	}

	if err = that.client.Publish(ctx, that.GamesChannel(), announcement).Err(); err != nil {
		return fmt.Errorf("failed to announce game: %w", err)
	}

	return nil
}

func (that *Feed) PublishSummary(ctx context.Context, summary entity.MatchSummary) error {
	if err := that.client.Publish(ctx, that.MatchChannel(), summary.String()).Err(); err != nil {
		return fmt.Errorf("failed to publish match summary: %w", err)
	}

	return nil
}

// GameRecorder returns a recorder publishing every game line on the game's channel.
func (that *Feed) GameRecorder(ctx context.Context, gameID string) *FeedRecorder {
	return &FeedRecorder{
		ctx:     ctx,
		feed:    that,
		channel: that.GameChannel(gameID),
	}
}

// FeedRecorder never fails: spectators missing a line must not affect the game.
type FeedRecorder struct {
	ctx     context.Context
	feed    *Feed
	channel string
}

// Record publishes line, giving up after publishTimeout so a stalled Redis cannot slow the game.
func (that *FeedRecorder) Record(line string) error {
	ctx, cancel := context.WithTimeout(that.ctx, publishTimeout)
	defer cancel()

	if err := that.feed.client.Publish(ctx, that.channel, line).Err(); err != nil {
		that.feed.logger.Warn("failed to publish game line", "channel", that.channel, "error", err)
	}

	return nil
}
