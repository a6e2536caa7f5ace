package pipeline

import (
	"context"
	"time"

	"github.com/ziadkadry99/hrdesk/internal/vectordb"
)

// Outcome is the terminal state of one Answer call.
type Outcome string

const (
	OutcomeRejected       Outcome = "rejected"
	OutcomeNoContext      Outcome = "no_context"
	OutcomeRetrieveFailed Outcome = "retrieve_failed"
	OutcomeGenerateFailed Outcome = "generate_failed"
	OutcomeAnswered       Outcome = "answered"
)

// Outcomes lists every outcome in pipeline order.
var Outcomes = []Outcome{
	OutcomeRejected,
	OutcomeNoContext,
	OutcomeRetrieveFailed,
	OutcomeGenerateFailed,
	OutcomeAnswered,
}

// Failed reports whether the outcome is an infrastructure failure.
func (o Outcome) Failed() bool {
	return o == OutcomeRetrieveFailed || o == OutcomeGenerateFailed
}

// AnswerResult is what callers of Answer receive.
type AnswerResult struct {
	RequestID string
	Text      string
	// Admitted is false only for out-of-domain questions.
	Admitted bool
	// GroundedInDocuments is true only when Outcome is OutcomeAnswered.
	GroundedInDocuments bool
	Outcome             Outcome
	// Sources are the chunks that formed the generation context.
	Sources []vectordb.Chunk
}

// Event describes one completed Answer call.
type Event struct {
	RequestID    string
	Question     string
	Outcome      Outcome
	Duration     time.Duration
	Sources      []vectordb.Chunk
	BestScore    float64
	Model        string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	Error        string
	At           time.Time
}

// Observer receives one Event per Answer call. Errors are logged and never
// affect the answer.
type Observer interface {
	Observe(ctx context.Context, ev Event) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, ev Event) error

func (f ObserverFunc) Observe(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}
