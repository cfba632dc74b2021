package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/conneroisu/uci/internal/enginetest/fakeuci"
	"github.com/conneroisu/uci/pkg/uci"
)

func newFakeService(t *testing.T, cfg fakeuci.Config) *Service {
	t.Helper()

	pipe := fakeuci.NewPipe(cfg)
	session, err := uci.NewSession(context.Background(), pipe, nil)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	t.Cleanup(func() {
		_ = session.Close()
		_ = pipe.Close()
	})

	return NewService(session, 2)
}

func connectSDK(t *testing.T, svc *Service) *mcpsdk.ClientSession {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	serverSession, err := NewSDKServer(svc, "test").Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "test"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client Connect() error = %v", err)
	}
	t.Cleanup(func() { _ = clientSession.Close() })

	return clientSession
}

func decodeStructured(t *testing.T, res *mcpsdk.CallToolResult, v any) {
	t.Helper()

	data, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
}

func TestSDKServerListsTools(t *testing.T) {
	cs := connectSDK(t, newFakeService(t, fakeuci.Config{}))

	res, err := cs.ListTools(context.Background(), &mcpsdk.ListToolsParams{})
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}

	names := make(map[string]bool)
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	if !names[ToolSetPosition] || !names[ToolAnalyze] {
		t.Errorf("tools = %v", names)
	}
}

func TestSDKServerAnalyze(t *testing.T) {
	cs := connectSDK(t, newFakeService(t, fakeuci.Config{}))
	ctx := context.Background()

	res, err := cs.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      ToolAnalyze,
		Arguments: map[string]any{"moves": []string{"f2f3", "e7e5", "g2g4"}, "depth": 1, "top": 3},
	})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %+v", res.Content)
	}

	var out AnalyzeResult
	decodeStructured(t, res, &out)
	if len(out.Moves) != 3 {
		t.Fatalf("expected 3 moves, got %d", len(out.Moves))
	}
	if out.Moves[0].Move != "d8h4" || out.Moves[0].Eval.Mate != 1 {
		t.Errorf("expected the mate first, got %+v", out.Moves[0])
	}
	if out.Position == "" {
		t.Error("expected the resolved position")
	}
}

func TestSDKServerReportsToolErrors(t *testing.T) {
	cs := connectSDK(t, newFakeService(t, fakeuci.Config{}))

	res, err := cs.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      ToolSetPosition,
		Arguments: map[string]any{"moves": []string{"not-a-move"}},
	})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if !res.IsError {
		t.Error("an invalid move must be reported as a tool error")
	}
}
