package pipe

import (
	"bufio"
	"context"
	"errors"
	"io"
)

// maxLineLength bounds how much of a single line is kept; longer lines are truncated.
const maxLineLength = 4096

// Line is the answer to one read request. Text is empty when the read failed.
type Line struct {
	Player int
	Seq    uint64
	Text   string
}

type request struct {
	player int
	seq    uint64
}

// Reader performs one blocking line read per request, one request at a time.
type Reader struct {
	readers  []*bufio.Reader
	requests *mailbox[request]
	lines    chan Line
	seq      uint64
}

func NewReader(stdouts []io.Reader) *Reader {
	readers := make([]*bufio.Reader, len(stdouts))
	for i, stdout := range stdouts {
		readers[i] = bufio.NewReaderSize(stdout, maxLineLength)
	}

	return &Reader{
		readers: readers,
		lines:   make(chan Line),
	}
}

// Start runs the reader until ctx is done or Close is called.
func (that *Reader) Start(ctx context.Context) {
	that.requests = newMailbox[request]()

	go that.run(ctx)
}

// Request queues a read from player and returns the sequence number its Line will carry.
func (that *Reader) Request(player int) uint64 {
	that.seq++
	that.requests.send(request{player: player, seq: that.seq})

	return that.seq
}

func (that *Reader) Lines() <-chan Line {
	return that.lines
}

func (that *Reader) Close() {
	that.requests.close()
}

func (that *Reader) run(ctx context.Context) {
	for req := range that.requests.receive() {
		line := Line{
			Player: req.player,
			Seq:    req.seq,
			Text:   readLine(that.readers[req.player]),
		}

		select {
		case that.lines <- line:
		case <-ctx.Done():
			// nobody is waiting any more; drain the queue so the mailbox can finish
			for range that.requests.receive() {
			}
			return
		}
	}
}

// readLine returns the next line including its terminator. A final unterminated line is returned
// as is; any other failure yields an empty string.
func readLine(reader *bufio.Reader) string {
	var line []byte

	for {
		chunk, err := reader.ReadSlice('\n')
		if len(line) < maxLineLength {
			line = append(line, chunk[:min(len(chunk), maxLineLength-len(line))]...)
		}

		switch {
		case err == nil:
			return string(line)
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			return string(line)
		default:
			return ""
		}
	}
}
