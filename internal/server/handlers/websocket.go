package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// eventStreamClient bridges engine events from NATS to one WebSocket
// subscriber.
type eventStreamClient struct {
	conn         *websocket.Conn
	send         chan []byte
	subscription *nats.Subscription
	logger       *logrus.Logger
}

// WebSocketConfig contains timing limits for event-stream connections.
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default event-stream configuration.
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4 * 1024,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, this should be more restrictive
		return true
	},
}

// RunEventsHandler streams run and topic events over WebSocket. Every
// client gets its own NATS subscription covering the events subject tree.
func RunEventsHandler(natsConn *nats.Conn, eventsTopic string, logger *logrus.Logger) http.HandlerFunc {
	if logger == nil {
		logger = logrus.New()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.WithError(err).Warn("failed to upgrade to websocket")
			return
		}

		client := &eventStreamClient{
			conn:   conn,
			send:   make(chan []byte, 256),
			logger: logger,
		}

		sub, err := natsConn.Subscribe(eventsTopic+".>", func(msg *nats.Msg) {
			envelope, marshalErr := json.Marshal(map[string]interface{}{
				"subject": msg.Subject,
				"data":    json.RawMessage(msg.Data),
				"time":    time.Now(),
			})
			if marshalErr != nil {
				return
			}
			select {
			case client.send <- envelope:
			default:
				// Slow consumer; drop the event rather than block NATS.
			}
		})
		if err != nil {
			logger.WithError(err).Error("failed to subscribe to events")
			conn.Close()
			return
		}
		client.subscription = sub

		go client.writePump()
		go client.readPump()

		welcome, _ := json.Marshal(map[string]interface{}{
			"type": "welcome",
			"time": time.Now(),
		})
		client.send <- welcome
	}
}

func (c *eventStreamClient) close() {
	if c.subscription != nil {
		c.subscription.Unsubscribe()
	}
	c.conn.Close()
}

// readPump watches for client disconnects; inbound payloads are ignored.
func (c *eventStreamClient) readPump() {
	config := DefaultWebSocketConfig()
	defer c.close()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Debug("websocket closed")
			}
			return
		}
	}
}

// writePump pushes queued events and keepalive pings to the peer.
func (c *eventStreamClient) writePump() {
	config := DefaultWebSocketConfig()
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
