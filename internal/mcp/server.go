package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/hrdesk/internal/pipeline"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Answerer is the pipeline call exposed to agents.
type Answerer interface {
	Answer(ctx context.Context, question string) pipeline.AnswerResult
}

// Server wraps an MCP server that exposes the HR question tool.
type Server struct {
	answerer Answerer
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server over the given pipeline.
func NewServer(answerer Answerer) *Server {
	s := &Server{answerer: answerer}

	s.mcp = server.NewMCPServer(
		"hrdesk",
		Version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(askHRQuestionTool, s.handleAskHRQuestion)

	return s
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
