// Package pipeline answers HR questions: admission, retrieval with a
// confidence gate, context assembly and grounded generation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/hrdesk/internal/llm"
	"github.com/ziadkadry99/hrdesk/internal/prompt"
	"github.com/ziadkadry99/hrdesk/internal/retriever"
	"github.com/ziadkadry99/hrdesk/internal/vectordb"
)

// Admitter decides whether a question is in the HR domain.
type Admitter interface {
	IsInDomain(question string) bool
}

// keywordMatcher is implemented by admitters that can name the keyword
// that admitted a question.
type keywordMatcher interface {
	Match(question string) (string, bool)
}

// Retriever returns the gated, rank-ordered chunks for a question. An empty
// result with a nil error means no usable context.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]vectordb.Chunk, error)
}

// Options holds the fixed texts and generation settings of a Pipeline.
type Options struct {
	SystemPrompt   string
	RefusalMessage string
	ErrorMessage   string
	ContextBudget  int

	Model       string
	MaxTokens   int
	Temperature float64
	// Timeout bounds the generation call only. Zero means no limit beyond
	// the caller's context.
	Timeout time.Duration

	Logger   *slog.Logger
	Observer Observer
}

// Pipeline is the answer orchestrator. It holds no per-request state and
// is safe for concurrent use.
type Pipeline struct {
	admit     Admitter
	retriever Retriever
	generator llm.Provider
	opts      Options
	logger    *slog.Logger
}

// New creates a Pipeline.
func New(admit Admitter, r Retriever, generator llm.Provider, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		admit:     admit,
		retriever: r,
		generator: generator,
		opts:      opts,
		logger:    logger,
	}
}

// Answer runs one question through the pipeline. It never returns an error:
// every failure is mapped to a fixed user-facing text and an Outcome.
func (p *Pipeline) Answer(ctx context.Context, question string) AnswerResult {
	start := time.Now()
	ev := Event{
		RequestID: uuid.NewString(),
		Question:  question,
		Model:     p.opts.Model,
		At:        start,
	}
	log := p.logger.With("request_id", ev.RequestID)

	res := p.answer(ctx, question, &ev, log)
	res.RequestID = ev.RequestID

	ev.Outcome = res.Outcome
	ev.Sources = res.Sources
	ev.Duration = time.Since(start)
	p.report(ctx, ev, log)
	return res
}

func (p *Pipeline) answer(ctx context.Context, question string, ev *Event, log *slog.Logger) AnswerResult {
	if !p.admit.IsInDomain(question) {
		return p.refuse(OutcomeRejected, false)
	}
	if m, ok := p.admit.(keywordMatcher); ok {
		kw, _ := m.Match(question)
		log.Debug("question admitted", "keyword", kw)
	}

	chunks, err := guard(func() ([]vectordb.Chunk, error) {
		return p.retriever.Retrieve(ctx, question)
	})
	if err != nil {
		ev.Error = err.Error()
		return p.fail(OutcomeRetrieveFailed)
	}
	if len(chunks) == 0 {
		return p.refuse(OutcomeNoContext, true)
	}
	ev.BestScore = retriever.BestScore(chunks)

	docs, sources := prompt.Assemble(chunks, p.opts.ContextBudget)
	messages := prompt.Messages(p.opts.SystemPrompt, docs, question)
	log.Debug("generation prompt", "chunks", len(sources), "prompt", prompt.Render(messages))

	text, err := p.generate(ctx, messages, ev)
	if err != nil {
		ev.Error = err.Error()
		res := p.fail(OutcomeGenerateFailed)
		res.Sources = sources
		return res
	}

	return AnswerResult{
		Text:                text,
		Admitted:            true,
		GroundedInDocuments: true,
		Outcome:             OutcomeAnswered,
		Sources:             sources,
	}
}

func (p *Pipeline) generate(ctx context.Context, messages []llm.Message, ev *Event) (string, error) {
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	resp, err := guard(func() (*llm.CompletionResponse, error) {
		return p.generator.Complete(ctx, llm.CompletionRequest{
			Model:       p.opts.Model,
			Messages:    messages,
			MaxTokens:   p.opts.MaxTokens,
			Temperature: p.opts.Temperature,
		})
	})
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", llm.ErrEmptyCompletion
	}

	ev.InputTokens, ev.OutputTokens = resp.InputTokens, resp.OutputTokens
	if ev.InputTokens == 0 {
		ev.InputTokens = llm.EstimateTokens(prompt.Render(messages))
	}
	if resp.Model != "" {
		ev.Model = resp.Model
	}
	ev.CostUSD = llm.EstimateCost(p.opts.Model, ev.InputTokens, ev.OutputTokens)

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", llm.ErrEmptyCompletion
	}
	return text, nil
}

func (p *Pipeline) refuse(o Outcome, admitted bool) AnswerResult {
	return AnswerResult{Text: p.opts.RefusalMessage, Admitted: admitted, Outcome: o}
}

func (p *Pipeline) fail(o Outcome) AnswerResult {
	return AnswerResult{Text: p.opts.ErrorMessage, Admitted: true, Outcome: o}
}

// report logs the outcome once and hands the event to the observer.
func (p *Pipeline) report(ctx context.Context, ev Event, log *slog.Logger) {
	attrs := []any{
		"outcome", ev.Outcome,
		"chunks", len(ev.Sources),
		"best_score", ev.BestScore,
		"duration", ev.Duration,
	}
	if ev.Outcome.Failed() {
		log.Error("answer failed", append(attrs, "error", ev.Error)...)
	} else {
		log.Info("answer", attrs...)
	}

	if p.opts.Observer == nil {
		return
	}
	if err := p.opts.Observer.Observe(ctx, ev); err != nil {
		log.Warn("outcome observer failed", "error", err)
	}
}

var errPanic = errors.New("adapter panicked")

// guard runs fn and turns a panic into an error.
func guard[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errPanic, r)
		}
	}()
	return fn()
}
