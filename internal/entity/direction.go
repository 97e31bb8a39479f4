package entity

import (
	"fmt"

	"github.com/rocketscienceinc/snakerunner/internal/apperror"
)

type Direction int

const (
	North Direction = iota
	South
	East
	West
)

// Directions lists every direction in wire order.
var Directions = []Direction{North, South, East, West}

// ParseDirection accepts exactly one uppercase letter: N, S, E or W.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "N":
		return North, nil
	case "S":
		return South, nil
	case "E":
		return East, nil
	case "W":
		return West, nil
	default:
		return 0, fmt.Errorf("%w: %q", apperror.ErrInvalidDirection, s)
	}
}

func (that Direction) String() string {
	switch that {
	case North:
		return "N"
	case South:
		return "S"
	case East:
		return "E"
	case West:
		return "W"
	default:
		return fmt.Sprintf("Direction(%d)", int(that))
	}
}

// Offset returns the unit step of the direction; y grows downwards.
func (that Direction) Offset() (int, int) {
	switch that {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case East:
		return 1, 0
	case West:
		return -1, 0
	default:
		return 0, 0
	}
}

func (that Direction) Opposite() Direction {
	switch that {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	default:
		return East
	}
}
