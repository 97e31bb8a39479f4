// Package protocol implements the line-oriented text grammar spoken between the runner,
// the player programs and the replay viewer:
//
//	move          ask the recipient for its next direction
//	<player>:<D>  player moved in direction D (N, S, E or W)
//	out:<player>  player was eliminated
//	stop          the recipient must exit
package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/snakerunner/internal/apperror"
	"github.com/rocketscienceinc/snakerunner/internal/entity"
)

type Kind int

const (
	KindAskMove Kind = iota
	KindMove
	KindOut
	KindStop
)

const (
	askMoveText = "move"
	stopText    = "stop"
	outPrefix   = "out:"
)

type Instruction struct {
	Kind      Kind
	Player    int
	Direction entity.Direction
}

func AskMove() Instruction {
	return Instruction{Kind: KindAskMove}
}

func Move(player int, direction entity.Direction) Instruction {
	return Instruction{Kind: KindMove, Player: player, Direction: direction}
}

func Out(player int) Instruction {
	return Instruction{Kind: KindOut, Player: player}
}

func Stop() Instruction {
	return Instruction{Kind: KindStop}
}

// String encodes the instruction without the line terminator.
func (that Instruction) String() string {
	switch that.Kind {
	case KindAskMove:
		return askMoveText
	case KindMove:
		return strconv.Itoa(that.Player) + ":" + that.Direction.String()
	case KindOut:
		return outPrefix + strconv.Itoa(that.Player)
	case KindStop:
		return stopText
	default:
		return fmt.Sprintf("Instruction(%d)", int(that.Kind))
	}
}

// Parse decodes one line. A trailing line terminator is ignored, anything else must match exactly.
func Parse(line string) (Instruction, error) {
	line = strings.TrimRight(line, "\r\n")

	switch {
	case line == askMoveText:
		return AskMove(), nil
	case line == stopText:
		return Stop(), nil
	case strings.HasPrefix(line, outPrefix):
		player, err := parsePlayer(strings.TrimPrefix(line, outPrefix))
		if err != nil {
			return Instruction{}, fmt.Errorf("%w: %q", apperror.ErrInvalidInstruction, line)
		}
		return Out(player), nil
	}

	playerText, directionText, ok := strings.Cut(line, ":")
	if !ok {
		return Instruction{}, fmt.Errorf("%w: %q", apperror.ErrInvalidInstruction, line)
	}

	player, err := parsePlayer(playerText)
	if err != nil {
		return Instruction{}, fmt.Errorf("%w: %q", apperror.ErrInvalidInstruction, line)
	}

	direction, err := entity.ParseDirection(directionText)
	if err != nil {
		return Instruction{}, fmt.Errorf("%w: %w", apperror.ErrInvalidInstruction, err)
	}

	return Move(player, direction), nil
}

// parsePlayer only accepts plain decimal digits, so signs and spaces are rejected.
func parsePlayer(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}

	return strconv.Atoi(s)
}
