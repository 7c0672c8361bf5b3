// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes catalog tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/procyon/internal/catalogservice"
)

// Server wraps the MCP server with catalog tools.
type Server struct {
	mcp *server.MCPServer
	svc *catalogservice.Service
}

// New creates a new MCP server with all catalog tools registered.
func New(svc *catalogservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Procyon",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_items",
		mcp.WithDescription("List the catalog tree: all folders and memos with their ids."),
	), s.listItems)

	s.mcp.AddTool(mcp.NewTool("read_memo",
		mcp.WithDescription("Read the full text of a memo by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Memo id")),
	), s.readMemo)

	s.mcp.AddTool(mcp.NewTool("create_memo",
		mcp.WithDescription("Create a new memo inside a folder. "+
			"The \"type\" argument must be one of the keys from the "+
			"get_memo_types tool or the procyon://memo-types resource."),
		mcp.WithNumber("parent_id", mcp.Description("Folder id to create the memo in (0 for the root)")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Memo title")),
		mcp.WithString("type", mcp.Description("Memo type key (defaults to plain_text)")),
		mcp.WithString("content", mcp.Description("Memo body text")),
	), s.createMemo)

	s.mcp.AddTool(mcp.NewTool("delete_memo",
		mcp.WithDescription("Delete a memo by id. This cannot be undone."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Memo id")),
	), s.deleteMemo)

	s.mcp.AddTool(mcp.NewTool("memo_count",
		mcp.WithDescription("Return the total number of memos in the open catalog."),
	), s.memoCount)

	s.mcp.AddTool(mcp.NewTool("get_memo_types",
		mcp.WithDescription("Returns the catalog memo type contract. "+
			"Call this before creating memos to pick the right type."),
	), s.getMemoTypes)

	// Resource: memo type contract.
	s.mcp.AddResource(
		mcp.NewResource("procyon://memo-types", "Memo Type Contract",
			mcp.WithResourceDescription("Memo types a catalog stores and how to choose between them."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readMemoTypesResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tree, err := s.svc.Tree(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(tree, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readMemo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	memo, err := s.svc.GetMemo(ctx, int64(id))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: memo %d", id)), nil
	}
	return mcp.NewToolResultText(memo.Text), nil
}

func (s *Server) createMemo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	parentID := req.GetInt("parent_id", 0)
	typeKey := req.GetString("type", "")
	content := req.GetString("content", "")

	id, err := s.svc.CreateMemo(ctx, int64(parentID), title, typeKey, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: memo %d", id)), nil
}

func (s *Server) deleteMemo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteMemo(ctx, int64(id)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: memo %d", id)), nil
}

func (s *Server) memoCount(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := s.svc.MemoCount(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%d", n)), nil
}

func (s *Server) getMemoTypes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MemoTypeContract), nil
}

func (s *Server) readMemoTypesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "procyon://memo-types",
			MIMEType: "text/markdown",
			Text:     MemoTypeContract,
		},
	}, nil
}
