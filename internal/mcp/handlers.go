package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/hrdesk/internal/pipeline"
)

// handleAskHRQuestion runs the question through the pipeline. Refusals are
// ordinary text results; only infrastructure failures are flagged as tool
// errors so agents can tell them apart.
func (s *Server) handleAskHRQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil || strings.TrimSpace(question) == "" {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	res := s.answerer.Answer(ctx, question)
	if res.Outcome.Failed() {
		return mcp.NewToolResultError(res.Text), nil
	}
	return mcp.NewToolResultText(formatAnswer(res)), nil
}

func formatAnswer(res pipeline.AnswerResult) string {
	if len(res.Sources) == 0 {
		return res.Text
	}

	var sb strings.Builder
	sb.WriteString(res.Text)
	sb.WriteString("\n\nSources:\n")
	for _, c := range res.Sources {
		if c.Page > 0 {
			sb.WriteString(fmt.Sprintf("- %s (page %d, score %.2f)\n", c.SourceID, c.Page, c.Score))
		} else {
			sb.WriteString(fmt.Sprintf("- %s (score %.2f)\n", c.SourceID, c.Score))
		}
	}
	return sb.String()
}
