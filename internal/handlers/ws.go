package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lifeline-dev/lifeline/internal/models"
	"github.com/lifeline-dev/lifeline/internal/types"
)

// Request lifecycle events pushed to feed subscribers.
const (
	EventRequestCreated    = "request_created"
	EventRequestInProgress = "request_in_progress"
	EventRequestFulfilled  = "request_fulfilled"
	EventRequestCancelled  = "request_cancelled"
)

var (
	feedClients   = make(map[string]map[*websocket.Conn]bool) // blood type -> connections
	feedClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type requestEvent struct {
	Type    string              `json:"type"`
	Request BloodRequestSummary `json:"request"`
}

// BroadcastRequestEvent pushes a lifecycle event to every subscriber of the
// request's blood type and of "Any". A request for "Any" blood reaches every
// room.
func BroadcastRequestEvent(event string, request models.BloodRequest) {
	feedClientsMu.RLock()

	var conns []*websocket.Conn

	for bloodType, clients := range feedClients {
		if bloodType != request.BloodType && bloodType != types.BloodTypeAny && request.BloodType != types.BloodTypeAny {
			continue
		}
		for conn := range clients {
			conns = append(conns, conn)
		}
	}

	feedClientsMu.RUnlock()

	if len(conns) == 0 {
		return
	}

	payload := requestEvent{
		Type:    event,
		Request: newBloodRequestSummary(request),
	}

	for _, conn := range conns {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for broadcast: %v", err)
			continue
		}

		if err := conn.WriteJSON(payload); err != nil {
			log.Printf("Failed to broadcast request event: %v", err)
			removeFeedClient(conn)
			conn.Close()
		}
	}
}

func removeFeedClient(conn *websocket.Conn) {
	feedClientsMu.Lock()

	for bloodType, clients := range feedClients {
		if clients[conn] {
			delete(clients, conn)

			if len(clients) == 0 {
				delete(feedClients, bloodType)
			}
		}
	}

	feedClientsMu.Unlock()
}

func RequestFeed(c *gin.Context) {
	bloodType := c.Param("blood_type")

	if !types.IsValidRequestBloodType(bloodType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid blood type"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	feedClientsMu.Lock()
	if feedClients[bloodType] == nil {
		feedClients[bloodType] = make(map[*websocket.Conn]bool)
	}
	feedClients[bloodType][conn] = true
	feedClientsMu.Unlock()

	defer func() {
		removeFeedClient(conn)
		conn.Close()

		log.Printf("Request feed connection closed for blood type %s", bloodType)
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Printf("Failed to set write deadline for welcome message: %v", err)
		return
	}

	err = conn.WriteJSON(map[string]string{
		"type":       "connected",
		"message":    "Request feed connection established",
		"blood_type": bloodType,
	})

	if err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("Failed to set write deadline for blood type %s: %v", bloodType, err)
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("Ping failed for blood type %s: %v", bloodType, err)
				return
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for blood type %s: %v", bloodType, err)
			break
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Request feed error for blood type %s: %v", bloodType, err)
			}
			break
		}
	}
}
