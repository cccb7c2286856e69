package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"fabrica/internal/monitoring"
	"fabrica/internal/planner"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the form is served from a separate origin in development
	},
}

// previewSession is one open order form. The recipe cache and the
// pending-demand snapshot live exactly as long as the connection: the
// snapshot is taken once when the dialog opens and is knowingly stale with
// respect to orders other users submit meanwhile.
type previewSession struct {
	conn     *websocket.Conn
	send     chan []byte
	resolver *planner.Resolver
	pending  planner.PendingDemand
	api      *OrderAPI
}

// sessionMessage is what the form sends on every edit
type sessionMessage struct {
	Type  string         `json:"type"`
	Lines []draftLineDTO `json:"lines,omitempty"`
}

type previewMessage struct {
	Type string `json:"type"`
	previewResponse
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// HandlePreviewSession upgrades the connection and starts a form session
func (a *OrderAPI) HandlePreviewSession(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	resolver := planner.NewResolver(a.store)
	resolver.OnError = func(productID uint, err error) {
		a.monitor.Increment("recipe_fetch_failures")
		monitoring.RecipeFetchFailures.Inc()
	}

	session := &previewSession{
		conn:     conn,
		send:     make(chan []byte, 256),
		resolver: resolver,
		pending:  a.fetchPendingDemand(),
		api:      a,
	}
	a.monitor.Increment("preview_sessions")
	monitoring.ActivePreviewSessions.Inc()

	// Start the read and write pumps
	go session.writePump()
	go session.readPump()
}

// readPump pumps messages from the WebSocket connection to the handler
func (s *previewSession) readPump() {
	defer func() {
		monitoring.ActivePreviewSessions.Dec()
		s.conn.Close()
	}()

	s.conn.SetReadLimit(512 * 1024) // 512KB
	s.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		s.handleMessage(message)
	}
}

// writePump pumps messages from the server to the WebSocket connection
func (s *previewSession) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// The channel was closed
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := s.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage recomputes the preview for the draft the form just sent.
// Resolution failures degrade to unresolved lines; nothing here closes the
// session.
func (s *previewSession) handleMessage(raw []byte) {
	var msg sessionMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.sendError("malformed message")
		return
	}

	switch msg.Type {
	case "update":
		lines := previewRequest{Lines: msg.Lines}.toLines()
		for _, line := range lines {
			s.resolver.Ensure(context.Background(), line.ProductID)
		}
		resp := s.api.computePreview(lines, s.resolver.Snapshot(), s.pending)
		s.sendJSON(previewMessage{Type: "preview", previewResponse: resp})
	default:
		s.sendError("unknown message type: " + msg.Type)
	}
}

func (s *previewSession) sendError(text string) {
	s.sendJSON(errorMessage{Type: "error", Error: text})
}

func (s *previewSession) sendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}
	select {
	case s.send <- data:
	default:
		log.Printf("WebSocket send buffer full, dropping message")
	}
}
