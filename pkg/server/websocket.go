package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/geochat-ai/geochat/pkg/chat"
	"github.com/geochat-ai/geochat/pkg/geo"
	"github.com/geochat-ai/geochat/pkg/gmaps"
	"github.com/geochat-ai/geochat/pkg/ratelimit"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Local deployment; the API carries no cookies to protect.
		return true
	},
}

// wsInbound is one client turn on the chat socket.
type wsInbound struct {
	Message  string        `json:"message"`
	UserID   string        `json:"user_id"`
	Location *geo.Location `json:"location"`
}

// wsFrame is a typed outbound frame. Type is one of typing, stream,
// complete, error.
type wsFrame struct {
	Type      string         `json:"type"`
	Status    string         `json:"status,omitempty"`
	Content   string         `json:"content,omitempty"`
	Message   string         `json:"message,omitempty"`
	MapsData  *gmaps.MapData `json:"maps_data,omitempty"`
	ErrorType string         `json:"error_type,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conversationID := c.Param("conversation_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.logger.Info("websocket connected", "conversation_id", conversationID)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			s.logger.Info("websocket disconnected",
				"conversation_id", conversationID,
				"error", err)
			return
		}

		var in wsInbound
		if err := json.Unmarshal(raw, &in); err != nil {
			s.sendFrame(conn, errorFrame(chat.NewValidationError("invalid message format")))
			continue
		}
		identity := in.UserID
		if identity == "" {
			identity = "anonymous"
		}

		s.sendFrame(conn, wsFrame{Type: "typing", Status: "processing"})

		stream, err := s.chat.ProcessStream(c.Request.Context(), chat.Request{
			Message:        in.Message,
			ConversationID: conversationID,
			UserLocation:   in.Location,
			Identity:       identity,
			Class:          ratelimit.ClassWebSocket,
		})
		if err != nil {
			s.sendFrame(conn, errorFrame(err))
			continue
		}

		var full []byte
		failed := false
		for chunk := range stream.Chunks {
			if chunk.Err != nil {
				s.logger.Error("websocket stream failed",
					"conversation_id", conversationID,
					"error", chunk.Err)
				s.sendFrame(conn, errorFrame(chunk.Err))
				failed = true
				break
			}
			full = append(full, chunk.Text...)
			if !s.sendFrame(conn, wsFrame{Type: "stream", Content: chunk.Text}) {
				return
			}
		}
		if failed {
			continue
		}

		s.sendFrame(conn, wsFrame{
			Type:      "complete",
			Message:   string(full),
			MapsData:  stream.MapData,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// sendFrame writes one frame; false means the connection is gone.
func (s *Server) sendFrame(conn *websocket.Conn, frame wsFrame) bool {
	if err := conn.WriteJSON(frame); err != nil {
		s.logger.Debug("websocket write failed", "error", err)
		return false
	}
	return true
}

func errorFrame(err error) wsFrame {
	typed := chat.Classify(err)
	return wsFrame{
		Type:      "error",
		Message:   typed.Message,
		ErrorType: string(typed.Type),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
