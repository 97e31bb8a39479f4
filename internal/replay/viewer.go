package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rocketscienceinc/snakerunner/internal/entity"
)

var errQuit = errors.New("viewer closed")

// display is the part of tcell.Screen the viewer draws on.
type display interface {
	Clear()
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Show()
	PollEvent() tcell.Event
}

var (
	trailStyle = tcell.StyleDefault
	aliveStyle = tcell.StyleDefault.Bold(true).Foreground(tcell.ColorGreen)
	outStyle   = tcell.StyleDefault.Bold(true).Foreground(tcell.ColorRed)
	textStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

// Viewer plays a replay on a terminal screen. A zero delay waits for a key press between moves.
type Viewer struct {
	logger *slog.Logger
	screen display
	delay  time.Duration
}

func NewViewer(logger *slog.Logger, screen display, delay time.Duration) *Viewer {
	return &Viewer{
		logger: logger.With("component", "viewer"),
		screen: screen,
		delay:  delay,
	}
}

// Show draws every frame of replay and waits for a key press after the last one.
// q, Esc and Ctrl-C quit early; that is not an error.
func (that *Viewer) Show(ctx context.Context, replay *Replay) error {
	log := that.logger.With("method", "Show")

	keys := make(chan *tcell.EventKey)
	done := make(chan struct{})
	defer close(done)

	go that.pollKeys(keys, done)

	total := len(replay.Moves)
	err := replay.Walk(func(frame Frame) error {
		that.draw(frame, total)
		return that.wait(ctx, keys, that.delay)
	})
	if err == nil {
		that.text(0, replay.Setup.Height+3, "end of game, press any key")
		that.screen.Show()
		err = that.wait(ctx, keys, 0)
	}

	if errors.Is(err, errQuit) {
		log.Debug("replay closed by user")
		return nil
	}

	return err
}

func (that *Viewer) pollKeys(keys chan<- *tcell.EventKey, done <-chan struct{}) {
	for {
		event := that.screen.PollEvent()
		if event == nil {
			return
		}

		key, ok := event.(*tcell.EventKey)
		if !ok {
			continue
		}

		select {
		case keys <- key:
		case <-done:
			return
		}
	}
}

// wait blocks for delay, or for any key when delay is zero.
func (that *Viewer) wait(ctx context.Context, keys <-chan *tcell.EventKey, delay time.Duration) error {
	var tick <-chan time.Time
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		tick = timer.C
	}

	for {
		select {
		case key := <-keys:
			if isQuit(key) {
				return errQuit
			}
			if delay == 0 {
				return nil
			}
		case <-tick:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func isQuit(key *tcell.EventKey) bool {
	switch key.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return key.Rune() == 'q'
	default:
		return false
	}
}

// draw renders the board inside a border at the top left corner, with a status line below.
func (that *Viewer) draw(frame Frame, total int) {
	board := frame.Board
	width, height := board.Width(), board.Height()

	that.screen.Clear()

	for x := 0; x <= width+1; x++ {
		that.screen.SetContent(x, 0, '-', nil, trailStyle)
		that.screen.SetContent(x, height+1, '-', nil, trailStyle)
	}
	for y := 0; y <= height+1; y++ {
		corner := '|'
		if y == 0 || y == height+1 {
			corner = '+'
		}
		that.screen.SetContent(0, y, corner, nil, trailStyle)
		that.screen.SetContent(width+1, y, corner, nil, trailStyle)
	}

	for y := range height {
		for x := range width {
			cell := []rune(entity.EmptyCellSymbol)[0]
			if player, ok := board.Owner(entity.Position{X: x, Y: y}); ok {
				cell = playerRune(player)
			}
			that.screen.SetContent(x+1, y+1, cell, nil, trailStyle)
		}
	}

	for player := range board.Players() {
		head := board.Head(player)
		style := aliveStyle
		if board.IsOut(player) {
			style = outStyle
		}
		that.screen.SetContent(head.X+1, head.Y+1, playerRune(player), nil, style)
	}

	status := fmt.Sprintf("move %d/%d", frame.Step, total)
	if frame.Step > 0 {
		status += "  " + frame.Move.String()
	}
	that.text(0, height+2, status)

	that.screen.Show()
}

func (that *Viewer) text(x, y int, s string) {
	for i, r := range []rune(s) {
		that.screen.SetContent(x+i, y, r, nil, textStyle)
	}
}

// playerRune shows players 0-9 as digits and the rest as letters.
func playerRune(player int) rune {
	if player < 10 {
		return rune('0' + player)
	}

	return rune('a' + (player-10)%26)
}
