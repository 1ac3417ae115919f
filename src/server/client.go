package server

import (
	"encoding/json"
	"time"

	"astrografia/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Feed Subscriber
// -----------------------------------------------------------------------------

const (
	feedWriteWait  = 5 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = feedPongWait * 9 / 10
	// commands look like {"command": "history", "limit": 10}
	maxCommandSize = 4 << 10
	// snapshots queued per subscriber before the hub drops it
	subscriberBacklog = 256
)

// subscriber is one websocket connection on /ws/sky. The hub goroutine owns
// send and is the only one that closes it.
type subscriber struct {
	hub  *APIServer
	conn *websocket.Conn
	addr string
	send chan interface{}
}

// -----------------------------------------------------------------------------

func newSubscriber(hub *APIServer, conn *websocket.Conn) *subscriber {
	return &subscriber{
		hub:  hub,
		conn: conn,
		addr: conn.RemoteAddr().String(),
		send: make(chan interface{}, subscriberBacklog),
	}
}

// -----------------------------------------------------------------------------

// listen reads feed commands until the peer goes away, stops answering pings
// or sends something that is not a command.
func (sub *subscriber) listen() {
	defer func() {
		select {
		case sub.hub.unregister <- sub:
		case <-sub.hub.done:
		}
		sub.conn.Close()
		sub.hub.Logger.Debug("sky feed subscriber %s left", sub.addr)
	}()

	sub.conn.SetReadLimit(maxCommandSize)
	sub.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})

	for {
		_, data, err := sub.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				sub.hub.Logger.Warning("sky feed subscriber %s: %v", sub.addr, err)
			}
			return
		}

		var cmd models.MClientCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			sub.hub.Logger.Warning("sky feed subscriber %s sent an unreadable command, closing: %v", sub.addr, err)
			return
		}
		sub.hub.handleCommand(sub, cmd)
	}
}

// -----------------------------------------------------------------------------

// deliver writes queued snapshots and replies, pinging between them.
func (sub *subscriber) deliver() {
	ping := time.NewTicker(feedPingPeriod)
	defer func() {
		ping.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				sub.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "feed closed"))
				return
			}
			if err := sub.conn.WriteJSON(payload); err != nil {
				sub.hub.Logger.Warning("sky feed write to %s failed: %v", sub.addr, err)
				return
			}

		case <-ping.C:
			sub.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
