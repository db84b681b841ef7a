// Package mcp exposes the memory engine as an MCP server over stdio so
// that external agents can remember, recall and retrieve through tool
// calls.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/m-mizutani/engram/pkg/usecase/retrieval"
	"github.com/m-mizutani/goerr/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wires the memory and retrieval operations into MCP tools
type Server struct {
	memory    *memory.UseCase
	retrieval *retrieval.UseCase
}

func NewServer(mem *memory.UseCase, ret *retrieval.UseCase) (*Server, error) {
	if mem == nil || ret == nil {
		return nil, goerr.New("mcp server requires memory and retrieval usecases")
	}
	return &Server{memory: mem, retrieval: ret}, nil
}

// Run serves MCP over stdio until the context is cancelled or the
// client disconnects.
func (s *Server) Run(ctx context.Context) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "engram",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "engram_remember",
		Description: "Store a new memory record in the episodic store",
	}, s.remember)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "engram_recall",
		Description: "List stored memories ranked by current relevance",
	}, s.recall)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "engram_retrieve",
		Description: "Find indexed documents semantically similar to a query",
	}, s.retrieve)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return goerr.Wrap(err, "mcp server terminated")
	}
	return nil
}

type rememberParams struct {
	Content    string  `json:"content" jsonschema:"Text of the memory to store"`
	Source     string  `json:"source,omitempty" jsonschema:"Origin of the memory: observation, interaction, realization or diagnostic"`
	Confidence float64 `json:"confidence,omitempty" jsonschema:"Confidence in the memory, 0 to 1 (default 1)"`
}

func (s *Server) remember(ctx context.Context, req *mcp.CallToolRequest, params *rememberParams) (*mcp.CallToolResult, any, error) {
	source := model.Source(params.Source)
	if params.Source == "" {
		source = model.SourceObservation
	}
	confidence := params.Confidence
	if confidence == 0 {
		confidence = 1.0
	}

	rec, err := s.memory.Append(ctx, params.Content, source, confidence, nil)
	if err != nil {
		return toolError(err), nil, nil
	}

	return textResult(fmt.Sprintf("remembered %s", rec.ID)), nil, nil
}

type recallParams struct {
	Limit int  `json:"limit,omitempty" jsonschema:"Maximum number of memories to return (default 10)"`
	Use   bool `json:"use,omitempty" jsonschema:"Count this recall as use, reinforcing the returned memories"`
}

func (s *Server) recall(ctx context.Context, req *mcp.CallToolRequest, params *recallParams) (*mcp.CallToolResult, any, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}

	decayed, err := s.memory.LoadWithDecay(ctx)
	if err != nil {
		return toolError(err), nil, nil
	}
	ranked := memory.SortByRelevance(decayed)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	if params.Use && len(ranked) > 0 {
		ids := make([]model.MemoryID, len(ranked))
		for i, rec := range ranked {
			ids[i] = rec.ID
		}
		if _, err := s.memory.IncrementAccess(ctx, ids); err != nil {
			return toolError(err), nil, nil
		}
	}

	if len(ranked) == 0 {
		return textResult("no memories stored"), nil, nil
	}

	var b strings.Builder
	for _, rec := range ranked {
		fmt.Fprintf(&b, "[%s] (%s, weight %.2f) %s\n",
			rec.ID, rec.Source, rec.RelevanceWeight, rec.Content)
	}
	return textResult(b.String()), nil, nil
}

type retrieveParams struct {
	Query     string  `json:"query" jsonschema:"Natural language query to match against indexed documents"`
	TopK      int     `json:"top_k,omitempty" jsonschema:"Maximum number of documents to return (default 5)"`
	Threshold float64 `json:"threshold,omitempty" jsonschema:"Minimum cosine similarity, exclusive (default 0.5)"`
}

func (s *Server) retrieve(ctx context.Context, req *mcp.CallToolRequest, params *retrieveParams) (*mcp.CallToolResult, any, error) {
	result, err := s.retrieval.Retrieve(ctx, params.Query, retrieval.RetrieveOptions{
		TopK:      params.TopK,
		Threshold: params.Threshold,
	})
	if err != nil {
		return toolError(err), nil, nil
	}

	if result.Status == retrieval.StatusDegraded {
		return textResult("retrieval degraded: " + result.Hint), nil, nil
	}
	if len(result.Documents) == 0 {
		return textResult("no matching documents"), nil, nil
	}

	var b strings.Builder
	for _, doc := range result.Documents {
		fmt.Fprintf(&b, "%s (similarity %.3f) %s\n", doc.Filename, doc.Similarity, doc.Path)
	}
	return textResult(b.String()), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// toolError reports a failure to the MCP client as a tool error rather
// than a protocol failure, keeping the server alive.
func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: err.Error()},
		},
	}
}
