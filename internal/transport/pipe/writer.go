package pipe

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/rocketscienceinc/snakerunner/internal/entity"
	"github.com/rocketscienceinc/snakerunner/internal/protocol"
)

// Event is a unit of work for the Writer.
type Event interface {
	event()
}

// SendHeader delivers the header plus the recipient's own id to every player and logs the header.
type SendHeader struct {
	Header string
}

// AskMove requests a direction from one player.
type AskMove struct {
	Player int
}

// CommunicateMove logs a move and forwards it to every other live player.
type CommunicateMove struct {
	Player    int
	Direction entity.Direction
}

// Kill tells the player to stop, runs Terminate if set and announces the elimination to the rest.
type Kill struct {
	Player    int
	Terminate func()
}

func (SendHeader) event()      {}
func (AskMove) event()         {}
func (CommunicateMove) event() {}
func (Kill) event()            {}

type recorder interface {
	Record(line string) error
}

// Writer is the only writer to the players' stdin and to the game record. Events are handled
// strictly in the order they were sent.
type Writer struct {
	logger   *slog.Logger
	stdins   []io.Writer
	live     []bool
	recorder recorder
	trace    io.Writer

	events *mailbox[Event]
	done   chan struct{}
	err    error
}

// NewWriter creates a writer over the players' stdins. recorder and trace may be nil.
func NewWriter(logger *slog.Logger, stdins []io.Writer, recorder recorder, trace io.Writer) *Writer {
	live := make([]bool, len(stdins))
	for i := range live {
		live[i] = true
	}

	return &Writer{
		logger:   logger.With("component", "writer"),
		stdins:   stdins,
		live:     live,
		recorder: recorder,
		trace:    trace,
	}
}

func (that *Writer) Start() {
	that.events = newMailbox[Event]()
	that.done = make(chan struct{})

	go that.run()
}

// Send queues an event. It never blocks on player I/O.
func (that *Writer) Send(event Event) {
	that.events.send(event)
}

// Close waits until every queued event is handled and returns the first record error.
func (that *Writer) Close() error {
	that.events.close()
	<-that.done

	return that.err
}

func (that *Writer) run() {
	defer close(that.done)

	for event := range that.events.receive() {
		that.handle(event)
	}
}

func (that *Writer) handle(event Event) {
	switch msg := event.(type) {
	case SendHeader:
		for player := range that.stdins {
			that.write(player, msg.Header+"\n"+strconv.Itoa(player))
		}
		that.record(msg.Header)

	case AskMove:
		that.write(msg.Player, protocol.AskMove().String())

	case CommunicateMove:
		move := protocol.Move(msg.Player, msg.Direction).String()
		that.record(move)
		that.broadcast(msg.Player, move)

	case Kill:
		that.live[msg.Player] = false
		that.write(msg.Player, protocol.Stop().String())
		if msg.Terminate != nil {
			msg.Terminate()
		}
		that.broadcast(msg.Player, protocol.Out(msg.Player).String())

	default:
		that.logger.Error("unknown event", "type", fmt.Sprintf("%T", event))
	}
}

// broadcast writes message to every live player except sender.
func (that *Writer) broadcast(sender int, message string) {
	for player := range that.stdins {
		if player == sender || !that.live[player] {
			continue
		}
		that.write(player, message)
	}
}

// write delivers one message. A failed write only drops the player from future broadcasts.
func (that *Writer) write(player int, message string) {
	if that.trace != nil {
		fmt.Fprintf(that.trace, "->p%d  %q\n", player, message)
	}

	if _, err := io.WriteString(that.stdins[player], message+"\n"); err != nil {
		if that.live[player] {
			that.logger.Debug("player stopped accepting input", "player", player, "error", err)
		}
		that.live[player] = false
	}
}

func (that *Writer) record(line string) {
	if that.recorder == nil {
		return
	}

	if err := that.recorder.Record(line); err != nil && that.err == nil {
		that.err = fmt.Errorf("failed to record %q: %w", line, err)
		that.logger.Error("failed to record game event", "error", err)
	}
}
