package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	app "github.com/rocketscienceinc/snakerunner/internal"
	"github.com/rocketscienceinc/snakerunner/internal/config"
	"github.com/rocketscienceinc/snakerunner/internal/entity"
)

const usage = `usage:
  snakerunner run   -s SCRIPT... [-p X,Y...] [-x WIDTH] [-y HEIGHT] [-t LIMIT] [-v] [-o LOG]
  snakerunner match -s SCRIPT... [-n GAMES] [-x WIDTH] [-y HEIGHT] [-t LIMIT] [-o SUMMARY] [-l LOGDIR]
  snakerunner show  -i LOG [-t DELAY]
`

var errUsage = errors.New("invalid command line")

// main - is the entry point of the application. It initializes the configuration, logger, and runs the command.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	conf := initConfig()
	logger := initLogger(conf)

	err := runCommand(logger, conf, os.Args[1], os.Args[2:])
	if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
		fmt.Fprintf(os.Stderr, "%v\n%s", err, usage)
		os.Exit(2)
	}
	if err != nil {
		panic(fmt.Errorf("%s failed: %w", os.Args[1], err))
	}
}

func runCommand(logger *slog.Logger, conf *config.Config, command string, args []string) error {
	switch command {
	case "run":
		request, err := parseRun(conf, args)
		if err != nil {
			return err
		}
		return app.RunGame(logger, conf, request)
	case "match":
		request, err := parseMatch(conf, args)
		if err != nil {
			return err
		}
		return app.RunMatch(logger, conf, request)
	case "show":
		request, err := parseShow(args)
		if err != nil {
			return err
		}
		return app.RunShow(logger, request)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

// listFlag collects every value of a flag that may be given several times.
type listFlag []string

func (that *listFlag) String() string {
	return strings.Join(*that, " ")
}

func (that *listFlag) Set(value string) error {
	*that = append(*that, value)
	return nil
}

// expandLists rewrites "-s a b -p 1,2 3,4" into "-s a -s b -p 1,2 -p 3,4" for the named flags.
func expandLists(args []string, names ...string) []string {
	expanded := make([]string, 0, len(args))
	current := ""

	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			current = ""
			for _, name := range names {
				if arg == "-"+name || arg == "--"+name {
					current = arg
				}
			}
			expanded = append(expanded, arg)
			continue
		}

		if current != "" && len(expanded) > 0 && !strings.HasPrefix(expanded[len(expanded)-1], "-") {
			expanded = append(expanded, current)
		}
		expanded = append(expanded, arg)
	}

	return expanded
}

func newFlagSet(name string) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	return flags
}

// parseRun reads the run flags; board size and time limit override the configuration.
func parseRun(conf *config.Config, args []string) (app.GameRequest, error) {
	var scripts, starts listFlag

	flags := newFlagSet("run")
	flags.Var(&scripts, "s", "player scripts")
	flags.Var(&starts, "p", "start positions x,y, one per script")
	flags.IntVar(&conf.Board.Width, "x", conf.Board.Width, "board width")
	flags.IntVar(&conf.Board.Height, "y", conf.Board.Height, "board height")
	flags.DurationVar(&conf.TimeLimit, "t", conf.TimeLimit, "time limit per move")
	verbose := flags.Bool("v", false, "print every message and board")
	logPath := flags.String("o", "log.txt", "game log path")

	if err := flags.Parse(expandLists(args, "s", "p")); err != nil {
		return app.GameRequest{}, fmt.Errorf("%w: %w", errUsage, err)
	}

	scripts = append(scripts, flags.Args()...)
	if len(scripts) == 0 {
		return app.GameRequest{}, fmt.Errorf("%w: no scripts given", errUsage)
	}

	request := app.GameRequest{Scripts: scripts, Verbose: *verbose, LogPath: *logPath}
	for _, start := range starts {
		pos, err := entity.ParsePosition(start)
		if err != nil {
			return app.GameRequest{}, fmt.Errorf("%w: %w", errUsage, err)
		}
		request.Starts = append(request.Starts, pos)
	}

	return request, nil
}

func parseMatch(conf *config.Config, args []string) (app.MatchRequest, error) {
	var scripts listFlag

	flags := newFlagSet("match")
	flags.Var(&scripts, "s", "player scripts")
	flags.IntVar(&conf.Match.Games, "n", conf.Match.Games, "number of games")
	flags.IntVar(&conf.Board.Width, "x", conf.Board.Width, "board width")
	flags.IntVar(&conf.Board.Height, "y", conf.Board.Height, "board height")
	flags.DurationVar(&conf.TimeLimit, "t", conf.TimeLimit, "time limit per move")
	flags.StringVar(&conf.Match.Summary, "o", conf.Match.Summary, "summary path")
	flags.StringVar(&conf.Match.LogDir, "l", conf.Match.LogDir, "directory for per-game logs")

	if err := flags.Parse(expandLists(args, "s")); err != nil {
		return app.MatchRequest{}, fmt.Errorf("%w: %w", errUsage, err)
	}

	scripts = append(scripts, flags.Args()...)
	if len(scripts) == 0 {
		return app.MatchRequest{}, fmt.Errorf("%w: no scripts given", errUsage)
	}

	return app.MatchRequest{Scripts: scripts}, nil
}

func parseShow(args []string) (app.ShowRequest, error) {
	var request app.ShowRequest

	flags := newFlagSet("show")
	flags.StringVar(&request.LogPath, "i", "log.txt", "game log to replay")
	flags.DurationVar(&request.Delay, "t", 500*time.Millisecond, "delay between moves, 0 steps on key press")

	if err := flags.Parse(args); err != nil {
		return app.ShowRequest{}, fmt.Errorf("%w: %w", errUsage, err)
	}

	return request, nil
}

// initialize config.
func initConfig() *config.Config {
	if path := os.Getenv("SNAKE_CONFIG"); path != "" {
		return config.MustLoad(path)
	}

	baseDir, err := os.Getwd()
	if err != nil {
		panic(fmt.Errorf("failed to get current directory: %w", err))
	}

	return config.MustLoad(filepath.Join(baseDir, "./config.yml"))
}

// initialize logger. Standard output is left to results and the verbose trace.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	options := &slog.HandlerOptions{Level: level}
	if conf.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, options))
	}

	return slog.New(slog.NewTextHandler(os.Stderr, options))
}
