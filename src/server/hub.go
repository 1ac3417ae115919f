package server

import (
	"net/http"

	"astrografia/src/models"
	"astrografia/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	typeUpdate  = "UPDATE"
	typeInitial = "INITIAL"
	typeHistory = "HISTORY"
)

// directMessage is a reply addressed to a single subscriber.
type directMessage struct {
	client  *subscriber
	payload interface{}
}

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *APIServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.connections.Store(0)
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connections.Store(int64(len(s.clients)))

			s.stateMutex.RLock()
			latest := s.latestState
			s.stateMutex.RUnlock()
			if latest != nil {
				initial := *latest
				initial.Type = typeInitial
				client.send <- &initial
			}

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				s.connections.Store(int64(len(s.clients)))
			}

		case m := <-s.direct:
			if _, ok := s.clients[m.client]; ok {
				select {
				case m.client.send <- m.payload:
				default:
				}
			}

		case message := <-s.broadcast:
			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					close(client.send)
				}
			}
			s.connections.Store(int64(len(s.clients)))
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// UpdateAllDatas records the snapshot as latest state and in the history.
func (s *APIServer) UpdateAllDatas(snapshot *models.MSkySnapshot) {
	if snapshot == nil {
		return
	}
	snapshot.Type = typeUpdate

	s.stateMutex.Lock()
	s.latestState = snapshot
	s.stateMutex.Unlock()

	s.history.Append(snapshot)
}

// -----------------------------------------------------------------------------

// Broadcast records the snapshot and queues it for every connected client.
func (s *APIServer) Broadcast(snapshot *models.MSkySnapshot) {
	if snapshot == nil {
		return
	}
	s.UpdateAllDatas(snapshot)

	select {
	case s.broadcast <- snapshot:
	case <-s.done:
	default:
		s.Logger.Warning("broadcast queue full, dropping snapshot %d", snapshot.Timestamp)
	}
}

// -----------------------------------------------------------------------------

func (s *APIServer) historyResponse(limit int) *models.MSkyHistory {
	items := s.history.GetLatest(limit)
	snapshots := make([]models.MSkySnapshot, 0, len(items))
	for _, item := range items {
		snapshots = append(snapshots, *item)
	}
	return &models.MSkyHistory{Type: typeHistory, Snapshots: snapshots}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := newSubscriber(s, conn)

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.deliver()
	go client.listen()
}

// -----------------------------------------------------------------------------
// Feed Commands
// -----------------------------------------------------------------------------

// handleCommand answers "history" and "latest"; other commands are ignored.
func (s *APIServer) handleCommand(client *subscriber, cmd models.MClientCommand) {
	var response interface{}
	switch cmd.Command {
	case "history":
		response = s.historyResponse(utils.ClampLimit(cmd.Limit, s.history.Size()))
	case "latest":
		s.stateMutex.RLock()
		latest := s.latestState
		s.stateMutex.RUnlock()
		if latest == nil {
			return
		}
		response = latest
	default:
		return
	}

	// The hub owns client.send; it drops the reply if the buffer is full.
	select {
	case s.direct <- directMessage{client: client, payload: response}:
	case <-s.done:
	}
}
