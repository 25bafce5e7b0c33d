package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

// writeHandleHarness accepts exactly one WebSocket connection and exposes its
// WriteHandle for direct, unit-level exercise.
func writeHandleHarness(t *testing.T) (*WriteHandle, *websocket.Conn, context.Context) {
	t.Helper()

	whCh := make(chan *WriteHandle, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		whCh <- newWriteHandle(conn, testLogger())
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1)
	client, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close(websocket.StatusNormalClosure, "") })

	select {
	case wh := <-whCh:
		return wh, client, ctx
	case <-ctx.Done():
		t.Fatal("server never accepted the connection")
		return nil, nil, nil
	}
}

func TestWriteHandle_SendDispatchIncrementsSequence(t *testing.T) {
	wh, client, ctx := writeHandleHarness(t)

	if err := wh.SendDispatch("MESSAGE_CREATE", map[string]string{"content": "one"}); err != nil {
		t.Fatalf("SendDispatch: %v", err)
	}
	if err := wh.SendDispatch("MESSAGE_CREATE", map[string]string{"content": "two"}); err != nil {
		t.Fatalf("SendDispatch: %v", err)
	}

	first := readEnvelope(t, ctx, client)
	second := readEnvelope(t, ctx, client)

	if first.S == nil || *first.S != 1 {
		t.Fatalf("first seq = %v, want 1", first.S)
	}
	if second.S == nil || *second.S != 2 {
		t.Fatalf("second seq = %v, want 2", second.S)
	}
}

func TestWriteHandle_SendPreservesEnqueueOrder(t *testing.T) {
	wh, client, ctx := writeHandleHarness(t)

	_ = wh.Send(helloEnvelope())
	_ = wh.Send(heartbeatAckEnvelope())

	first := readEnvelope(t, ctx, client)
	second := readEnvelope(t, ctx, client)

	if first.Op != OpHello {
		t.Fatalf("first op = %d, want Hello", first.Op)
	}
	if second.Op != OpHeartbeatAck {
		t.Fatalf("second op = %d, want HeartbeatAck", second.Op)
	}
}

func TestWriteHandle_CloseIsOrderedAfterPriorSends(t *testing.T) {
	wh, client, ctx := writeHandleHarness(t)

	_ = wh.Send(invalidSessionEnvelope(true))
	_ = wh.Close(CloseNormal, "")

	invalid := readEnvelope(t, ctx, client)
	if invalid.Op != OpInvalidSession {
		t.Fatalf("op = %d, want InvalidSession (the close must not overtake the preceding send)", invalid.Op)
	}

	if _, _, err := client.Read(ctx); err == nil {
		t.Fatal("expected the connection to close after the enqueued close message")
	}
}

func TestEnvelope_JSONRoundTrip(t *testing.T) {
	seq := uint64(5)
	typ := "READY"
	env := Envelope{Op: OpDispatch, T: &typ, S: &seq, D: ReadyPayload{SessionID: "abc"}}

	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Envelope
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Op != OpDispatch || *decoded.T != "READY" || *decoded.S != 5 {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}
