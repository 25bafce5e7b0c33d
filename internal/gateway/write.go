package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/coder/websocket"
)

// errWriterClosed is returned by Send and Close once the writer goroutine
// has terminated; the caller should treat the connection as gone.
var errWriterClosed = errors.New("gateway: connection writer has terminated")

// writeQueueDepth bounds the number of outstanding messages a connection may
// buffer before a slow client begins to backpressure the sender; the mock
// only ever has a handful of scripted messages in flight at once.
const writeQueueDepth = 64

// outbound is one entry of a connection's write queue: either a frame to
// send, or a request to close the connection. Requests are drained and
// applied strictly in the order they were enqueued, so a Send immediately
// followed by a Close is never reordered onto the wire.
type outbound struct {
	data        []byte
	closeCode   CloseCode
	closeReason string
	isClose     bool
}

// WriteHandle is the single point through which a connection's goroutines
// write to its socket, serializing concurrent senders onto one consumer.
type WriteHandle struct {
	conn     *websocket.Conn
	logger   *slog.Logger
	sequence atomic.Uint64
	queue    chan outbound
	done     chan struct{}
}

func newWriteHandle(conn *websocket.Conn, logger *slog.Logger) *WriteHandle {
	w := &WriteHandle{
		conn:   conn,
		logger: logger,
		queue:  make(chan outbound, writeQueueDepth),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *WriteHandle) run() {
	defer close(w.done)
	ctx := context.Background()
	for msg := range w.queue {
		if msg.isClose {
			w.conn.Close(websocket.StatusCode(msg.closeCode), msg.closeReason)
			return
		}
		if err := w.conn.Write(ctx, websocket.MessageText, msg.data); err != nil {
			return
		}
	}
}

// Send serializes and enqueues env as-is, with no sequence assignment. A
// frame that cannot be serialized is logged and dropped without error; the
// mock stays available even if one payload is unencodable. An error means
// the writer has terminated and the connection should be torn down.
func (w *WriteHandle) Send(env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		w.logger.Error("failed to serialize envelope", slog.Any("error", err))
		return nil
	}
	w.logger.Debug("sending envelope", slog.String("payload", string(data)))

	select {
	case <-w.done:
		return errWriterClosed
	default:
	}
	select {
	case w.queue <- outbound{data: data}:
		return nil
	case <-w.done:
		return errWriterClosed
	}
}

// SendDispatch assigns the next sequence number and sends data as a dispatch
// envelope with the given event type.
func (w *WriteHandle) SendDispatch(eventType string, data any) error {
	seq := w.sequence.Add(1)
	return w.Send(Envelope{Op: OpDispatch, T: &eventType, S: &seq, D: data})
}

// Close enqueues a close of the underlying connection with a gateway close
// code, ordered after any previously enqueued sends.
func (w *WriteHandle) Close(code CloseCode, reason string) error {
	select {
	case <-w.done:
		return errWriterClosed
	default:
	}
	select {
	case w.queue <- outbound{isClose: true, closeCode: code, closeReason: reason}:
		return nil
	case <-w.done:
		return errWriterClosed
	}
}
