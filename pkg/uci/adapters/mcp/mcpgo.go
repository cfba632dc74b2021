package mcp

import (
	"context"
	"encoding/json"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// mcpGoHandlers adapts Service to mcp-go tool handlers.
type mcpGoHandlers struct {
	svc *Service
}

// NewMCPGoServer creates an mcp-go server exposing svc.
func NewMCPGoServer(svc *Service, version string) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(
		ServerName,
		version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)
	h := &mcpGoHandlers{svc: svc}

	s.AddTool(mcpgo.NewTool(ToolSetPosition,
		mcpgo.WithDescription("Set the engine position and return the position the engine resolved"),
		mcpgo.WithString("fen", mcpgo.Description("Position in FEN, empty for the start position")),
		mcpgo.WithArray("moves",
			mcpgo.Description("Moves in long algebraic notation applied to the position"),
			mcpgo.WithStringItems(),
		),
	), h.setPosition)

	s.AddTool(mcpgo.NewTool(ToolAnalyze,
		mcpgo.WithDescription("Search a position and return every candidate move, best first"),
		mcpgo.WithString("fen", mcpgo.Description("Position in FEN, empty keeps the current position")),
		mcpgo.WithArray("moves",
			mcpgo.Description("Moves in long algebraic notation applied before searching"),
			mcpgo.WithStringItems(),
		),
		mcpgo.WithNumber("depth", mcpgo.Description("Search depth in plies")),
		mcpgo.WithNumber("top", mcpgo.Description("Return only the best N moves")),
	), h.analyze)

	return s
}

// ServeHTTP serves s over streamable HTTP on addr until it fails.
func ServeHTTP(s *mcpserver.MCPServer, addr string) error {
	return mcpserver.NewStreamableHTTPServer(s).Start(addr)
}

func (h *mcpGoHandlers) setPosition(
	ctx context.Context,
	req mcpgo.CallToolRequest,
) (*mcpgo.CallToolResult, error) {
	out, err := h.svc.SetPosition(ctx, PositionArgs{
		FEN:   req.GetString("fen", ""),
		Moves: req.GetStringSlice("moves", nil),
	})
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}

	return jsonResult(out)
}

func (h *mcpGoHandlers) analyze(
	ctx context.Context,
	req mcpgo.CallToolRequest,
) (*mcpgo.CallToolResult, error) {
	out, err := h.svc.Analyze(ctx, AnalyzeArgs{
		FEN:   req.GetString("fen", ""),
		Moves: req.GetStringSlice("moves", nil),
		Depth: req.GetInt("depth", 0),
		Top:   req.GetInt("top", 0),
	})
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}

	return jsonResult(out)
}

func jsonResult(v any) (*mcpgo.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return mcpgo.NewToolResultText(string(data)), nil
}
