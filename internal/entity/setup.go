package entity

import (
	"bufio"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/snakerunner/internal/apperror"
)

// Setup is the game header sent to every player and written at the top of the log.
type Setup struct {
	Width  int
	Height int
	Starts []Position
}

// String renders the header without the trailing per-recipient player id.
func (that Setup) String() string {
	lines := make([]string, 0, len(that.Starts)+2)
	lines = append(lines, fmt.Sprintf("%d,%d", that.Width, that.Height), strconv.Itoa(len(that.Starts)))
	for _, pos := range that.Starts {
		lines = append(lines, pos.String())
	}

	return strings.Join(lines, "\n")
}

// NewBoard builds the starting board described by the header.
func (that Setup) NewBoard() (*Board, error) {
	return NewBoard(that.Width, that.Height, that.Starts)
}

// ReadSetup consumes the header lines from scanner.
func ReadSetup(scanner *bufio.Scanner) (Setup, error) {
	next := func(what string) (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("failed to read %s: %w", what, err)
			}
			return "", fmt.Errorf("%w: missing %s", apperror.ErrInvalidHeader, what)
		}
		return strings.TrimSpace(scanner.Text()), nil
	}

	line, err := next("board size")
	if err != nil {
		return Setup{}, err
	}

	size, err := ParsePosition(line)
	if err != nil {
		return Setup{}, fmt.Errorf("%w: board size %q", apperror.ErrInvalidHeader, line)
	}

	line, err = next("player count")
	if err != nil {
		return Setup{}, err
	}

	players, err := strconv.Atoi(line)
	if err != nil || players < 0 {
		return Setup{}, fmt.Errorf("%w: player count %q", apperror.ErrInvalidHeader, line)
	}

	// the count comes from an untrusted file, so it is not used to preallocate
	setup := Setup{Width: size.X, Height: size.Y}
	for i := range players {
		line, err = next(fmt.Sprintf("start of player %d", i))
		if err != nil {
			return Setup{}, err
		}

		pos, err := ParsePosition(line)
		if err != nil {
			return Setup{}, fmt.Errorf("%w: start of player %d: %w", apperror.ErrInvalidHeader, i, err)
		}
		setup.Starts = append(setup.Starts, pos)
	}

	return setup, nil
}

// ParsePosition parses "x,y" with non-negative integer coordinates.
func ParsePosition(s string) (Position, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return Position{}, fmt.Errorf("%w: %q", apperror.ErrInvalidPosition, s)
	}

	x, errX := strconv.Atoi(xs)
	y, errY := strconv.Atoi(ys)
	if errX != nil || errY != nil || x < 0 || y < 0 {
		return Position{}, fmt.Errorf("%w: %q", apperror.ErrInvalidPosition, s)
	}

	return Position{X: x, Y: y}, nil
}

// RandomPositions picks n distinct cells of a width x height board.
func RandomPositions(rng *rand.Rand, width, height, n int) ([]Position, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: board %dx%d", apperror.ErrInvalidHeader, width, height)
	}

	area := width * height
	if n > area {
		return nil, fmt.Errorf("%w: %d players on %dx%d", apperror.ErrBoardTooSmall, n, width, height)
	}

	positions := make([]Position, 0, n)

	// dense boards: sample without replacement
	if 2*n > area {
		for _, cell := range rng.Perm(area)[:n] {
			positions = append(positions, Position{X: cell % width, Y: cell / width})
		}
		return positions, nil
	}

	taken := make(map[Position]struct{}, n)
	for len(positions) < n {
		pos := Position{X: rng.Intn(width), Y: rng.Intn(height)}
		if _, ok := taken[pos]; ok {
			continue
		}
		taken[pos] = struct{}{}
		positions = append(positions, pos)
	}

	return positions, nil
}
