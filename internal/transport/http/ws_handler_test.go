package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"quiz-runner/internal/app"
	"quiz-runner/internal/infra/memory"
)

const sampleSet = `[{"question":"2+2?","options":["3","4"],"answer":"4"}]`

type fixedSource string

func (s fixedSource) Fetch(context.Context) ([]byte, error) { return []byte(s), nil }

type idleClock struct{}

func (idleClock) Every(time.Duration, func()) func() { return func() {} }

func newTestServer(t *testing.T, source app.QuestionSource, best app.BestScoreStore) *httptest.Server {
	t.Helper()
	wsHandler := NewWSHandler(source, best, zerolog.Nop(), app.WithClock(idleClock{}))
	server := httptest.NewServer(NewRouter(wsHandler, source, zerolog.Nop()))
	t.Cleanup(server.Close)
	return server
}

func TestWebSocketQuizFlow(t *testing.T) {
	best := memory.NewBestScoreStore()
	server := newTestServer(t, fixedSource(sampleSet), best)

	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	payload := readUntil(t, conn, "question")
	if payload["prompt"] != "2+2?" {
		t.Fatalf("unexpected question payload: %v", payload)
	}

	send(t, conn, map[string]any{"type": "select", "payload": map[string]any{"option": "4"}})
	score := readUntil(t, conn, "score")
	if score["score"] != float64(1) {
		t.Fatalf("expected score 1, got %v", score)
	}

	send(t, conn, map[string]any{"type": "next"})
	for {
		msg := readUntil(t, conn, "message")
		if msg["text"] == app.MsgNewRecord {
			break
		}
	}
	if stored, _ := best.Load(context.Background()); stored != 1 {
		t.Fatalf("expected best score persisted, got %d", stored)
	}
}

func TestWebSocketUnsupportedMessage(t *testing.T) {
	server := newTestServer(t, fixedSource(sampleSet), memory.NewBestScoreStore())

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):]+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readUntil(t, conn, "question")
	send(t, conn, map[string]any{"type": "dance"})
	payload := readUntil(t, conn, "error")
	if payload["message"] != "unsupported message type" {
		t.Fatalf("unexpected error payload: %v", payload)
	}
}

func TestWebSocketUnavailableQuestionSet(t *testing.T) {
	server := newTestServer(t, fixedSource(`[]`), memory.NewBestScoreStore())

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):]+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	payload := readUntil(t, conn, "unavailable")
	if payload["message"] != app.MsgUnavailable {
		t.Fatalf("unexpected unavailable payload: %v", payload)
	}
}

func TestQuestionsEndpointServesSource(t *testing.T) {
	server := newTestServer(t, fixedSource(sampleSet), memory.NewBestScoreStore())

	resp, err := http.Get(server.URL + "/questions.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK || string(body) != sampleSet {
		t.Fatalf("unexpected response %d %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t, fixedSource(sampleSet), memory.NewBestScoreStore())

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readUntil skips events until one of the given type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) map[string]any {
	t.Helper()
	for i := 0; i < 100; i++ {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json waiting for %s: %v", typ, err)
		}
		if msg.Type == typ {
			return msg.Payload
		}
	}
	t.Fatalf("no %s event received", typ)
	return nil
}
