package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewSDKServer creates a go-sdk MCP server exposing svc. Run it with
// RunStdio or connect it to any go-sdk transport.
func NewSDKServer(svc *Service, version string) *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    ServerName,
		Version: version,
	}, nil)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        ToolSetPosition,
		Description: "Set the engine position and return the position the engine resolved",
	}, func(
		ctx context.Context,
		_ *mcpsdk.CallToolRequest,
		args PositionArgs,
	) (*mcpsdk.CallToolResult, PositionResult, error) {
		out, err := svc.SetPosition(ctx, args)

		return nil, out, err
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        ToolAnalyze,
		Description: "Search a position and return every candidate move, best first",
	}, func(
		ctx context.Context,
		_ *mcpsdk.CallToolRequest,
		args AnalyzeArgs,
	) (*mcpsdk.CallToolResult, AnalyzeResult, error) {
		out, err := svc.Analyze(ctx, args)

		return nil, out, err
	})

	return server
}

// RunStdio serves server on stdin/stdout until ctx ends or the client
// disconnects.
func RunStdio(ctx context.Context, server *mcpsdk.Server) error {
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}
