package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/pathminer/internal/namestore"
)

func (s *Server) handleLookupNames(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.names == nil {
		return errResult("no name store configured; start the server with --names-db"), nil
	}
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	file := getStringArg(args, "file")
	if file == "" {
		return errResult("file is required"), nil
	}
	entries, err := s.names.Lookup(ctx, getStringArg(args, "run_id"), file)
	if err != nil {
		return errResult(fmt.Sprintf("lookup: %v", err)), nil
	}
	if len(entries) == 0 {
		return errResult(fmt.Sprintf("no names stored for %s", file)), nil
	}
	return jsonResult(map[string]any{
		"file":    file,
		"run_id":  entries[0].RunID,
		"count":   len(entries),
		"methods": namesView(namestore.NameMap(entries)),
	}), nil
}
