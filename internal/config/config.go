package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel     string        `yaml:"log-level" env:"SNAKE_LOG_LEVEL" env-default:"info"`
	LogFormat    string        `yaml:"log-format" env:"SNAKE_LOG_FORMAT" env-default:"text"`
	Board        Board         `yaml:"board"`
	TimeLimit    time.Duration `yaml:"time-limit" env:"SNAKE_TIME_LIMIT" env-default:"100ms"`
	StartupGrace int           `yaml:"startup-grace" env:"SNAKE_STARTUP_GRACE" env-default:"10"`
	Match        Match         `yaml:"match"`
	Interpreters []Interpreter `yaml:"interpreters"`
	Redis        Redis         `yaml:"redis"`
}

type Board struct {
	Width  int `yaml:"width" env:"SNAKE_BOARD_WIDTH" env-default:"10"`
	Height int `yaml:"height" env:"SNAKE_BOARD_HEIGHT" env-default:"10"`
}

type Match struct {
	Games            int    `yaml:"games" env:"SNAKE_MATCH_GAMES" env-default:"10"`
	Summary          string `yaml:"summary" env:"SNAKE_MATCH_SUMMARY" env-default:"summary.txt"`
	LogDir           string `yaml:"log-dir" env:"SNAKE_MATCH_LOG_DIR"`
	TiebreakAttempts int    `yaml:"tiebreak-attempts" env:"SNAKE_MATCH_TIEBREAK_ATTEMPTS" env-default:"10"`
}

// Interpreter maps a script suffix to the program running it in module mode.
type Interpreter struct {
	Suffix  string   `yaml:"suffix"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

type Redis struct {
	Enabled       bool          `yaml:"enabled" env:"SNAKE_REDIS_ENABLED" env-default:"false"`
	Host          string        `yaml:"host" env:"SNAKE_REDIS_HOST" env-default:"localhost"`
	Port          string        `yaml:"port" env:"SNAKE_REDIS_PORT" env-default:"6379"`
	Password      string        `yaml:"password" env:"SNAKE_REDIS_PASSWORD"`
	DB            int           `yaml:"db" env:"SNAKE_REDIS_DB" env-default:"0"`
	DialTimeout   time.Duration `yaml:"dial-timeout" env:"SNAKE_REDIS_DIAL_TIMEOUT" env-default:"2s"`
	ChannelPrefix string        `yaml:"channel-prefix" env:"SNAKE_REDIS_CHANNEL_PREFIX" env-default:"snake"`
}

// Load reads the YAML file at path when it exists, otherwise only the environment and defaults.
func Load(path string) (*Config, error) {
	config := &Config{}

	var err error
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		err = cleanenv.ReadEnv(config)
	} else {
		err = cleanenv.ReadConfig(path, config)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if len(config.Interpreters) == 0 {
		config.Interpreters = DefaultInterpreters()
	}

	return config, nil
}

// MustLoad - load all configurations in the config file, panicking on failure.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// DefaultInterpreters runs Python files with `python3 -m` (`python -m` on Windows).
func DefaultInterpreters() []Interpreter {
	python := "python3"
	if runtime.GOOS == "windows" {
		python = "python"
	}

	return []Interpreter{{Suffix: ".py", Command: python, Args: []string{"-m"}}}
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
