package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsError is sent for frames that never reach the pipeline.
type wsError struct {
	Error string `json:"error"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxQuestionBytes)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read", "error", err)
			}
			return
		}

		var req answerRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.send(conn, wsError{Error: "invalid message format"})
			continue
		}
		if strings.TrimSpace(req.Question) == "" {
			s.send(conn, wsError{Error: "question is required"})
			continue
		}

		res := s.answerer.Answer(r.Context(), req.Question)
		s.send(conn, ToJSON(res))
	}
}

func (s *Server) send(conn *websocket.Conn, v any) {
	if err := conn.WriteJSON(v); err != nil {
		s.logger.Warn("websocket write", "error", err)
	}
}
