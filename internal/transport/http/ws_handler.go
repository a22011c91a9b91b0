package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"quiz-runner/internal/app"
)

// WSHandler runs one independent quiz per WebSocket connection.
type WSHandler struct {
	source   app.QuestionSource
	best     app.BestScoreStore
	opts     []app.Option
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(source app.QuestionSource, best app.BestScoreStore, log zerolog.Logger, opts ...app.Option) *WSHandler {
	return &WSHandler{
		source: source,
		best:   best,
		opts:   opts,
		log:    log.With().Str("component", "ws").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Option string `json:"option"`
}

// ServeWS upgrades the request and bridges the socket to a fresh controller.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	log := h.log.With().Str("conn", uuid.NewString()).Logger()

	send := make(chan outboundMessage[any], 64)
	done := make(chan struct{})
	writerDone := make(chan struct{})

	// Single writer: gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-send:
				if err := conn.WriteJSON(msg); err != nil {
					log.Debug().Err(err).Msg("ws write error")
					_ = conn.Close()
					return
				}
			case <-done:
				return
			}
		}
	}()

	ui := newSocketUI(send, writerDone)
	opts := make([]app.Option, 0, len(h.opts)+1)
	opts = append(opts, app.WithLogger(log))
	opts = append(opts, h.opts...)
	ctrl := app.NewController(h.source, h.best, ui, opts...)

	log.Info().Msg("quiz connection opened")
	_ = ctrl.Load(ctx)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				ui.emit("error", errorPayload{Message: "invalid select payload"})
				continue
			}
			ctrl.Select(payload.Option)
		case "next":
			ctrl.Advance(ctx)
		case "help":
			ctrl.UseHelp()
		case "restart":
			_ = ctrl.Restart(ctx)
		default:
			ui.emit("error", errorPayload{Message: "unsupported message type"})
		}
	}

	close(done)
	ctrl.Close()
	<-writerDone
	log.Info().Msg("quiz connection closed")
}
