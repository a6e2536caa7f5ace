package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ziadkadry99/hrdesk/internal/pipeline"
)

const maxQuestionBytes = 16 << 10

type answerRequest struct {
	Question string `json:"question"`
}

type sourceJSON struct {
	Source string  `json:"source"`
	Page   int     `json:"page"`
	Rank   int     `json:"rank"`
	Score  float64 `json:"score"`
}

// AnswerJSON is the wire shape shared by POST /api/answer, /ws and
// `hrdesk ask --json`.
type AnswerJSON struct {
	RequestID string       `json:"request_id"`
	Answer    string       `json:"answer"`
	Admitted  bool         `json:"admitted"`
	Grounded  bool         `json:"grounded"`
	Outcome   string       `json:"outcome"`
	Sources   []sourceJSON `json:"sources"`
}

// ToJSON converts a pipeline result to its wire shape.
func ToJSON(res pipeline.AnswerResult) AnswerJSON {
	out := AnswerJSON{
		RequestID: res.RequestID,
		Answer:    res.Text,
		Admitted:  res.Admitted,
		Grounded:  res.GroundedInDocuments,
		Outcome:   string(res.Outcome),
		Sources:   make([]sourceJSON, 0, len(res.Sources)),
	}
	for _, c := range res.Sources {
		out.Sources = append(out.Sources, sourceJSON{
			Source: c.SourceID,
			Page:   c.Page,
			Rank:   c.Rank,
			Score:  c.Score,
		})
	}
	return out
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQuestionBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	res := s.answerer.Answer(r.Context(), req.Question)
	writeJSON(w, http.StatusOK, ToJSON(res))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
