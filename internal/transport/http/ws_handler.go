package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"study-companion/internal/app"
	"study-companion/internal/domain"
)

type WSHandler struct {
	study    *app.StudyService
	upgrader websocket.Upgrader
	logger   logrus.FieldLogger
}

func NewWSHandler(study *app.StudyService, logger logrus.FieldLogger) *WSHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &WSHandler{
		study:  study,
		logger: logger,
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
	Label string `json:"label"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// resultPayload is what the result screen renders.
type resultPayload struct {
	domain.Result
	Message        string `json:"message"`
	MasteryPercent int    `json:"masteryPercent"`
}

func newResultPayload(result domain.Result) resultPayload {
	return resultPayload{
		Result:         result,
		Message:        result.Summary.Tier.Message(),
		MasteryPercent: result.Summary.MasteryPercent(),
	}
}

// wsConn is the per-connection state: the live session and its tick forwarder.
type wsConn struct {
	h      *WSHandler
	ctx    context.Context
	setID  string
	send   chan outboundMessage[any]
	closed chan struct{}

	sessionID  string
	cancelSub  func()
	forwarders sync.WaitGroup
	lastResult *domain.Result
}

// ServeWS upgrades HTTP requests to websockets and drives one study session per connection.
// Query: setId (required). Inbound types: next, previous, first, last, select, submit, review, restart.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	setID := r.URL.Query().Get("setId")
	if setID == "" {
		http.Error(w, "missing setId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	c := &wsConn{
		h:      h,
		ctx:    r.Context(),
		setID:  setID,
		send:   make(chan outboundMessage[any], 16),
		closed: make(chan struct{}),
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range c.send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.WithError(err).Debug("ws write error")
				// keep draining so producers never block
				for range c.send {
				}
				return
			}
		}
	}()

	if err := c.start(); err != nil {
		c.emit("error", errorPayload{Message: err.Error()})
	} else {
		for {
			var inbound inboundMessage
			if err := conn.ReadJSON(&inbound); err != nil {
				break
			}
			c.handle(inbound)
		}
	}

	c.stopSession()
	close(c.closed)
	c.forwarders.Wait()
	close(c.send)
	<-writerDone
}

func (c *wsConn) emit(typ string, payload any) {
	select {
	case c.send <- outboundMessage[any]{Type: typ, Payload: payload}:
	case <-c.closed:
	}
}

func (c *wsConn) handle(inbound inboundMessage) {
	switch inbound.Type {
	case "next", "previous", "first", "last":
		view, err := c.h.study.Navigate(c.ctx, c.sessionID, domain.Move(inbound.Type))
		c.reply(view, err)
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			c.emit("error", errorPayload{Message: "invalid select payload"})
			return
		}
		view, err := c.h.study.SelectOption(c.ctx, c.sessionID, payload.Label)
		c.reply(view, err)
	case "submit":
		result, submitted, err := c.h.study.Submit(c.ctx, c.sessionID)
		if err != nil {
			c.emit("error", errorPayload{Message: err.Error()})
			return
		}
		if !submitted {
			view, err := c.h.study.View(c.ctx, c.sessionID)
			c.reply(view, err)
			return
		}
		c.lastResult = &result
		c.emit("result", newResultPayload(result))
	case "review":
		if c.lastResult == nil {
			c.emit("error", errorPayload{Message: "nothing to review yet"})
			return
		}
		c.stopSession()
		sub := c.lastResult.Submission
		view, err := c.h.study.StartReview(c.ctx, c.setID, sub.Selections, sub.TimeTaken)
		if err != nil {
			c.emit("error", errorPayload{Message: err.Error()})
			return
		}
		c.follow(view.SessionID)
		c.emit("state", view)
	case "restart":
		c.stopSession()
		c.lastResult = nil
		if err := c.start(); err != nil {
			c.emit("error", errorPayload{Message: err.Error()})
		}
	default:
		c.emit("error", errorPayload{Message: "unsupported message type"})
	}
}

func (c *wsConn) reply(view domain.SessionView, err error) {
	if err != nil {
		c.emit("error", errorPayload{Message: err.Error()})
		return
	}
	c.emit("state", view)
}

// start opens a fresh answering session over the connection's question set.
func (c *wsConn) start() error {
	view, err := c.h.study.StartSession(c.ctx, c.setID)
	if err != nil {
		return err
	}
	c.follow(view.SessionID)
	c.emit("state", view)
	return nil
}

// follow makes sessionID current and forwards its timer ticks.
func (c *wsConn) follow(sessionID string) {
	c.sessionID = sessionID
	ticks, cancel, err := c.h.study.Subscribe(c.ctx, sessionID)
	if err != nil {
		c.h.logger.WithError(err).WithField("sessionId", sessionID).Warn("tick subscription failed")
		return
	}
	c.cancelSub = cancel

	c.forwarders.Add(1)
	go func() {
		defer c.forwarders.Done()
		for tick := range ticks {
			select {
			case c.send <- outboundMessage[any]{Type: "tick", Payload: tick}:
			case <-c.closed:
				return
			}
		}
	}()
}

// stopSession cancels the tick subscription and discards the current session.
func (c *wsConn) stopSession() {
	if c.cancelSub != nil {
		c.cancelSub()
		c.cancelSub = nil
	}
	if c.sessionID != "" {
		c.h.study.End(c.ctx, c.sessionID)
		c.sessionID = ""
	}
}
