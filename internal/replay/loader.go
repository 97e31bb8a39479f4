package replay

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rocketscienceinc/snakerunner/internal/apperror"
	"github.com/rocketscienceinc/snakerunner/internal/entity"
	"github.com/rocketscienceinc/snakerunner/internal/protocol"
)

// Replay is a parsed game log: the header and the moves in the order they were sent.
type Replay struct {
	Setup entity.Setup
	Moves []protocol.Instruction
}

// Load reads a game log. Lines other than moves are skipped, so a trace of everything a
// player was sent loads as well.
func Load(r io.Reader) (*Replay, error) {
	scanner := bufio.NewScanner(r)

	setup, err := entity.ReadSetup(scanner)
	if err != nil {
		return nil, fmt.Errorf("failed to read log header: %w", err)
	}

	replay := &Replay{Setup: setup}

	for lineNo := len(setup.Starts) + 3; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		instruction, err := protocol.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if instruction.Kind != protocol.KindMove {
			continue
		}
		if instruction.Player >= len(setup.Starts) {
			return nil, fmt.Errorf("line %d: %w: unknown player %d", lineNo, apperror.ErrInvalidInstruction, instruction.Player)
		}

		replay.Moves = append(replay.Moves, instruction)
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}

	return replay, nil
}

// Frame is the board right after move Step (1-based) was applied. Step 0 is the start.
type Frame struct {
	Step  int
	Move  protocol.Instruction
	Board *entity.Board
}

// Walk replays the moves on a fresh board and calls visit with the start and after every move.
// The board is shared between calls and must not be kept. A move onto a taken cell marks
// its player out, exactly like during the game.
func (that *Replay) Walk(visit func(frame Frame) error) error {
	board, err := that.Setup.NewBoard()
	if err != nil {
		return fmt.Errorf("failed to build starting board: %w", err)
	}

	if err = visit(Frame{Board: board}); err != nil {
		return err
	}

	for i, move := range that.Moves {
		board.MovePlayer(move.Player, move.Direction)

		if err = visit(Frame{Step: i + 1, Move: move, Board: board}); err != nil {
			return err
		}
	}

	return nil
}
