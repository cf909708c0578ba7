// Package ws exposes the game coordinator over WebSocket connections that
// exchange JSON event envelopes.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/ludo/internal/observability"
	"github.com/cory-johannsen/ludo/internal/protocol"
	"github.com/cory-johannsen/ludo/internal/session"
)

const (
	// maxMessageBytes caps a single inbound frame.
	maxMessageBytes = 64 << 10
	writeTimeout    = 5 * time.Second
)

// EventSink receives the lifecycle and events of every connection.
type EventSink interface {
	// Connect registers a connection and returns its session, whose outbox
	// the handler drains to the socket.
	Connect(connID string) (*session.Session, error)
	// Dispatch handles one inbound event.
	Dispatch(connID string, in protocol.Inbound)
	// Disconnect reconciles and unregisters a connection.
	Disconnect(connID string)
}

// Handler upgrades HTTP requests to WebSocket connections and bridges them
// to an EventSink.
type Handler struct {
	sink   EventSink
	logger *zap.Logger
	newID  func() string
}

// NewHandler creates a Handler.
//
// Precondition: sink and logger must be non-nil.
func NewHandler(sink EventSink, logger *zap.Logger) *Handler {
	return &Handler{sink: sink, logger: logger, newID: uuid.NewString}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Game clients connect from arbitrary origins.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Warn("websocket accept", zap.Error(err))
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(maxMessageBytes)

	connID := h.newID()
	sess, err := h.sink.Connect(connID)
	if err != nil {
		h.logger.Error("registering connection", observability.ConnFields(connID, "", zap.Error(err))...)
		conn.Close(websocket.StatusInternalError, "internal error")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() { errCh <- h.readLoop(ctx, conn, connID) }()
	go func() { errCh <- h.writeLoop(ctx, conn, sess) }()

	err = <-errCh
	cancel()
	<-errCh

	h.sink.Disconnect(connID)

	status := websocket.CloseStatus(err)
	switch {
	case err == nil, errors.Is(err, context.Canceled),
		status == websocket.StatusNormalClosure, status == websocket.StatusGoingAway:
		conn.Close(websocket.StatusNormalClosure, "closing")
	default:
		h.logger.Debug("websocket closed with error", observability.ConnFields(connID, "", zap.Error(err))...)
		conn.Close(websocket.StatusInternalError, "internal error")
	}
}

// readLoop decodes inbound envelopes and dispatches them until the socket
// fails. Frames that are not valid envelopes are logged and skipped.
func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, connID string) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		var in protocol.Inbound
		if err := json.Unmarshal(data, &in); err != nil || in.Event == "" {
			h.logger.Warn("ignoring malformed frame", observability.ConnFields(connID, "", zap.Error(err))...)
			continue
		}
		h.sink.Dispatch(connID, in)
	}
}

// writeLoop drains the session outbox to the socket. It returns nil when
// the outbox is closed.
func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, sess *session.Session) error {
	for {
		select {
		case msg, ok := <-sess.Entity.Events():
			if !ok {
				return nil
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, conn, msg)
			cancel()
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
