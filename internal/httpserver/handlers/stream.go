package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
	"github.com/MrSnakeDoc/mdnspanel/internal/transport"
)

const (
	streamBuffer     = 64
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

// StreamMessage is one frame sent on /api/stream.
type StreamMessage struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Stream relays services-changed and log-entry events to a browser, starting
// with the current snapshot. A client that falls behind by more than
// streamBuffer frames is disconnected.
func Stream(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			d.Logger.Debug("websocket upgrade failed", logger.Error(err))
			return
		}
		defer func() { _ = conn.Close() }()

		out := make(chan StreamMessage, streamBuffer)
		overflow := make(chan struct{})
		var once sync.Once
		send := func(m StreamMessage) {
			// Observers run under the producers' locks and must not block.
			select {
			case out <- m:
			default:
				once.Do(func() { close(overflow) })
			}
		}

		unsubServices := d.Registry.Subscribe(func(list []domain.ServiceRecord) {
			send(StreamMessage{Event: transport.EventServicesChanged, Payload: list})
		})
		defer unsubServices()
		unsubLogs := d.EventLog.Subscribe(func(e domain.LogEntry) {
			send(StreamMessage{Event: transport.EventLogEntry, Payload: e})
		})
		defer unsubLogs()

		// Queued after subscribing so the last services frame is never older
		// than the registry's current snapshot.
		send(StreamMessage{Event: transport.EventServicesChanged, Payload: d.Registry.Services()})

		closed := make(chan struct{})
		go readPump(conn, closed)

		ping := time.NewTicker(streamPingPeriod)
		defer ping.Stop()

		for {
			select {
			case m := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
				if err := conn.WriteJSON(m); err != nil {
					d.Logger.Debug("stream write failed", logger.Error(err))
					return
				}
			case <-ping.C:
				_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-overflow:
				d.Logger.Warn("stream client too slow, disconnecting",
					logger.String("remote_ip", r.RemoteAddr))
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "client too slow"),
					time.Now().Add(streamWriteWait))
				return
			case <-closed:
				return
			case <-r.Context().Done():
				return
			}
		}
	}
}

// readPump discards client frames and signals when the connection closes.
func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
