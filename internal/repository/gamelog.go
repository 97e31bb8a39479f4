package repository

import (
	"bufio"
	"fmt"
	"os"
)

// GameLog is the flat append-only record of one game: the header, then one move per line.
// Every line is flushed as soon as it is recorded.
type GameLog struct {
	file   *os.File
	writer *bufio.Writer
}

func CreateGameLog(path string) (*GameLog, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create game log: %w", err)
	}

	return &GameLog{
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

func (that *GameLog) Record(line string) error {
	if _, err := that.writer.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to write game log: %w", err)
	}

	if err := that.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush game log: %w", err)
	}

	return nil
}

func (that *GameLog) Close() error {
	if err := that.file.Close(); err != nil {
		return fmt.Errorf("failed to close game log: %w", err)
	}

	return nil
}
