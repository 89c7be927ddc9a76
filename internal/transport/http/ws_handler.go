package http

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"quizdesk/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// SubmissionSource hands out live submission subscriptions.
type SubmissionSource interface {
	Subscribe() (<-chan domain.Submission, func())
}

// WSHandler streams newly stored submissions to admin dashboards.
type WSHandler struct {
	source   SubmissionSource
	upgrader websocket.Upgrader
}

func NewWSHandler(source SubmissionSource) *WSHandler {
	return &WSHandler{
		source: source,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and pushes a "submission" message for every
// submission stored after the connection opened. Inbound messages are ignored.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.source.Subscribe()
	defer cancel()

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// only this goroutine writes to conn
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case sub, ok := <-updates:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(outboundMessage[domain.Submission]{Type: "submission", Payload: sub}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-readerDone:
			return
		}
	}
}
