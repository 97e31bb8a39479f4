package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/snakerunner/internal/apperror"
)

const (
	emptyCell = -1

	EmptyCellSymbol = "·"
)

type Position struct {
	X int
	Y int
}

func (that Position) String() string {
	return fmt.Sprintf("%d,%d", that.X, that.Y)
}

// Board is a torus grid of trails. Cells are only ever filled, never cleared.
type Board struct {
	width  int
	height int
	cells  []int
	heads  []Position
	out    []bool
}

// NewBoard places every player on its starting cell.
func NewBoard(width, height int, starts []Position) (*Board, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: board %dx%d", apperror.ErrInvalidHeader, width, height)
	}

	if len(starts) > width*height {
		return nil, fmt.Errorf("%w: %d players on %dx%d", apperror.ErrBoardTooSmall, len(starts), width, height)
	}

	board := &Board{
		width:  width,
		height: height,
		cells:  make([]int, width*height),
		heads:  make([]Position, len(starts)),
		out:    make([]bool, len(starts)),
	}
	for i := range board.cells {
		board.cells[i] = emptyCell
	}

	for player, pos := range starts {
		if !board.contains(pos) {
			return nil, fmt.Errorf("%w: %s outside %dx%d", apperror.ErrInvalidPosition, pos, width, height)
		}
		if board.cells[board.index(pos)] != emptyCell {
			return nil, fmt.Errorf("%w: %s used twice", apperror.ErrInvalidPosition, pos)
		}

		board.cells[board.index(pos)] = player
		board.heads[player] = pos
	}

	return board, nil
}

func (that *Board) Width() int {
	return that.width
}

func (that *Board) Height() int {
	return that.height
}

func (that *Board) Players() int {
	return len(that.heads)
}

func (that *Board) Head(player int) Position {
	return that.heads[player]
}

// Owner reports which player's trail covers pos.
func (that *Board) Owner(pos Position) (int, bool) {
	player := that.cells[that.index(pos)]
	return player, player != emptyCell
}

// IsOut reports whether the board has seen the player eliminated.
func (that *Board) IsOut(player int) bool {
	return that.out[player]
}

// Shift moves pos one step, wrapping around both axes.
func (that *Board) Shift(pos Position, direction Direction) Position {
	dx, dy := direction.Offset()
	return Position{
		X: wrap(pos.X+dx, that.width),
		Y: wrap(pos.Y+dy, that.height),
	}
}

// MovePlayer advances the player's head onto the neighbouring cell. It returns false and marks
// the player out when that cell is taken by any trail, the player's own included.
func (that *Board) MovePlayer(player int, direction Direction) bool {
	if that.out[player] {
		return false
	}

	target := that.Shift(that.heads[player], direction)
	if that.cells[that.index(target)] != emptyCell {
		that.out[player] = true
		return false
	}

	that.cells[that.index(target)] = player
	that.heads[player] = target

	return true
}

// Eliminate marks the player out without touching the grid.
func (that *Board) Eliminate(player int) {
	that.out[player] = true
}

// Setup returns the header describing the board's starting layout.
// Only meaningful before any move has been applied.
func (that *Board) Setup() Setup {
	starts := make([]Position, len(that.heads))
	copy(starts, that.heads)

	return Setup{Width: that.width, Height: that.height, Starts: starts}
}

func (that *Board) String() string {
	var sb strings.Builder

	border := "+" + strings.Repeat("-", that.width) + "+\n"
	sb.WriteString(border)
	for y := range that.height {
		sb.WriteString("|")
		for x := range that.width {
			if player, ok := that.Owner(Position{X: x, Y: y}); ok {
				sb.WriteString(strconv.Itoa(player))
			} else {
				sb.WriteString(EmptyCellSymbol)
			}
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(strings.TrimSuffix(border, "\n"))

	return sb.String()
}

func (that *Board) contains(pos Position) bool {
	return pos.X >= 0 && pos.X < that.width && pos.Y >= 0 && pos.Y < that.height
}

func (that *Board) index(pos Position) int {
	return pos.Y*that.width + pos.X
}

func wrap(value, size int) int {
	return ((value % size) + size) % size
}
