// Package tools exposes path-context extraction as MCP tools.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/pathminer/internal/config"
	"github.com/DeusData/pathminer/internal/namestore"
)

// Version is reported in the MCP implementation info.
var Version = "dev"

// Server wraps the MCP server with tool handlers.
type Server struct {
	mcp   *mcp.Server
	cfg   config.Config
	names *namestore.Store
}

// NewServer creates a new MCP server with all tools registered. cfg is
// copied and used as the base every tool call overrides. names may be nil,
// in which case lookup_names reports an error.
func NewServer(cfg *config.Config, names *namestore.Store) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	srv := &Server{
		cfg:   *cfg,
		names: names,
		mcp: mcp.NewServer(
			&mcp.Implementation{
				Name:    "pathminer",
				Version: Version,
			},
			nil,
		),
	}
	srv.registerTools()
	return srv
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// extractionProperties are shared by both extraction tools.
const extractionProperties = `
				"variables": {
					"type": "boolean",
					"description": "Emit one feature per local variable instead of one per method"
				},
				"obfuscate": {
					"type": "boolean",
					"description": "Rename identifiers and canonicalize literals before extraction"
				},
				"no_hash": {
					"type": "boolean",
					"description": "Return raw path strings instead of hashed tokens"
				},
				"max_path_length": {
					"type": "integer",
					"description": "Maximum number of up and down steps in a path (default from config, 8)"
				},
				"max_path_width": {
					"type": "integer",
					"description": "Maximum sibling distance at the top of a path (default from config, 2)"
				},
				"seed": {
					"type": "integer",
					"description": "Obfuscation seed, for reproducible placeholders"
				}`

func (s *Server) registerTools() {
	s.mcp.AddTool(&mcp.Tool{
		Name:        "extract_snippet",
		Description: "Extract AST path contexts from a source snippet. Parses the code (wrapping bare statements or members in a class when needed), pairs every two leaves of each method and returns the features as name plus source,path,target records. Use to turn a method into code2vec-style input.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"code": {
					"type": "string",
					"description": "Source code: a file, a class, a method or bare statements"
				},
				"language": {
					"type": "string",
					"description": "Source language (default java)",
					"enum": ["java", "python", "go", "javascript"]
				},` + extractionProperties + `
			},
			"required": ["code"]
		}`),
	}, s.handleExtractSnippet)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "extract_file",
		Description: "Extract AST path contexts from a source file on disk. The language is taken from the file extension. Returns the same features as extract_snippet plus the rename table when obfuscate is set.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"path": {
					"type": "string",
					"description": "Absolute path to a .java, .py, .go or .js file"
				},` + extractionProperties + `
			},
			"required": ["path"]
		}`),
	}, s.handleExtractFile)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "lookup_names",
		Description: "Map obfuscation placeholders of a file back to the original identifiers, from the name store written by 'pathminer extract --names-db'.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"file": {
					"type": "string",
					"description": "File path exactly as it was extracted"
				},
				"run_id": {
					"type": "string",
					"description": "Run to read. If omitted, uses the newest run holding the file."
				}
			},
			"required": ["file"]
		}`),
	}, s.handleLookupNames)
}

// jsonResult marshals data to JSON and returns it as a tool result.
func jsonResult(data any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errResult("json marshal err=" + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}
}

// errResult returns a tool result indicating an error.
func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}

// parseArgs unmarshals the raw JSON arguments into a map.
func parseArgs(req *mcp.CallToolRequest) (map[string]any, error) {
	if len(req.Params.Arguments) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &m); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return m, nil
}

// getStringArg extracts a string argument from parsed args.
func getStringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// getIntArg extracts an integer argument with a default value.
func getIntArg(args map[string]any, key string, defaultVal int) int {
	v, ok := args[key]
	if !ok {
		return defaultVal
	}
	f, ok := v.(float64) // JSON numbers decode as float64
	if !ok {
		return defaultVal
	}
	return int(f)
}

// getBoolArg extracts a boolean argument, falling back to defaultVal.
func getBoolArg(args map[string]any, key string, defaultVal bool) bool {
	v, ok := args[key]
	if !ok {
		return defaultVal
	}
	b, ok := v.(bool)
	if !ok {
		return defaultVal
	}
	return b
}
