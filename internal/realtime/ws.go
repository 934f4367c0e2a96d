package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait    = 10 * time.Second
	wsMaxFrameSize = 4096
)

// WSOptions configures the websocket transport. CheckOrigin nil accepts
// same-origin requests only.
type WSOptions struct {
	CheckOrigin func(r *http.Request) bool
}

type WSServer struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewWSServer(hub *Hub, opts WSOptions) *WSServer {
	return &WSServer{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
	}
}

// Serve upgrades the request and pumps the client's events as JSON text
// frames. Inbound frames are read and discarded to keep control frames
// flowing. The client is closed when either pump exits.
func (s *WSServer) Serve(w http.ResponseWriter, r *http.Request, c *Client) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.hub.log.Warn("Websocket upgrade failed", "client_id", c.ID, "error", err)
		s.hub.Close(c)
		return
	}
	defer conn.Close()
	defer s.hub.Close(c)

	pongWait := 2 * s.hub.heartbeat
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		conn.SetReadLimit(wsMaxFrameSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		}
	}()

	ping := newTicker(s.hub.heartbeat)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-readDone:
			s.hub.log.Debug("Websocket client disconnected", "client_id", c.ID)
			return
		case <-c.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(wsWriteWait))
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case ev, ok := <-c.Outbound:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				s.hub.log.Debug("Websocket write failed", "client_id", c.ID, "error", err)
				return
			}
		}
	}
}
