package pipe

// mailbox is an unbounded FIFO between one or more senders and a single consumer.
// Sends never block on a slow consumer.
type mailbox[T any] struct {
	in  chan T
	out chan T
}

func newMailbox[T any]() *mailbox[T] {
	box := &mailbox[T]{
		in:  make(chan T),
		out: make(chan T),
	}
	go box.pump()

	return box
}

func (that *mailbox[T]) send(item T) {
	that.in <- item
}

// close stops accepting items; the consumer still receives everything queued before.
func (that *mailbox[T]) close() {
	close(that.in)
}

func (that *mailbox[T]) receive() <-chan T {
	return that.out
}

func (that *mailbox[T]) pump() {
	defer close(that.out)

	var queue []T
	in := that.in

	for in != nil || len(queue) > 0 {
		var (
			out  chan T
			next T
		)
		if len(queue) > 0 {
			out = that.out
			next = queue[0]
		}

		select {
		case item, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			queue = append(queue, item)
		case out <- next:
			var zero T
			queue[0] = zero
			queue = queue[1:]
		}
	}
}
