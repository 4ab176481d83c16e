package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/pathminer/internal/config"
	"github.com/DeusData/pathminer/internal/namestore"
	"github.com/DeusData/pathminer/internal/obfuscate"
)

type extractResponse struct {
	Path         string            `json:"path"`
	Language     string            `json:"language"`
	State        string            `json:"state"`
	FeatureCount int               `json:"feature_count"`
	RecordCount  int               `json:"record_count"`
	Features     []featureView     `json:"features"`
	Output       string            `json:"output"`
	Names        []methodNamesView `json:"names"`
}

func request(args string) *mcp.CallToolRequest {
	return &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: json.RawMessage(args)}}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want *mcp.TextContent", res.Content[0])
	}
	return tc.Text
}

func decode(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func hasRecord(fs []featureView, source, path, target string) bool {
	for _, f := range fs {
		for _, r := range f.Records {
			if r.Source == source && r.Path == path && r.Target == target {
				return true
			}
		}
	}
	return false
}

func TestExtractSnippet(t *testing.T) {
	srv := NewServer(nil, nil)
	res, err := srv.handleExtractSnippet(context.Background(),
		request(`{"code": "int add(int a, int b) { return a + b; }", "no_hash": true}`))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	var got extractResponse
	decode(t, res, &got)
	if got.Language != "java" || got.State != "emitted" {
		t.Errorf("language=%s state=%s", got.Language, got.State)
	}
	if got.FeatureCount != 1 || got.Features[0].Name != "add" {
		t.Fatalf("unexpected features: %+v", got.Features)
	}
	if !hasRecord(got.Features, "a", "(identifier0)^(binary_expression:+)_(identifier1)", "b") {
		t.Errorf("missing a+b record in %q", got.Output)
	}
	if got.Names != nil {
		t.Errorf("names reported without obfuscation: %+v", got.Names)
	}
}

func TestExtractSnippetPython(t *testing.T) {
	srv := NewServer(nil, nil)
	res, err := srv.handleExtractSnippet(context.Background(),
		request(`{"code": "def scale(x, factor):\n    return x * factor\n", "language": "python", "no_hash": true}`))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	var got extractResponse
	decode(t, res, &got)
	if got.Language != "python" || got.FeatureCount != 1 || got.Features[0].Name != "scale" {
		t.Errorf("unexpected response: %+v", got)
	}
}

func TestExtractSnippetObfuscated(t *testing.T) {
	srv := NewServer(nil, nil)
	args := `{"code": "int add(int left, int right) { return left + right; }", "obfuscate": true, "variables": true, "seed": 7, "no_hash": true}`
	res, err := srv.handleExtractSnippet(context.Background(), request(args))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	var got extractResponse
	decode(t, res, &got)

	if len(got.Names) != 1 {
		t.Fatalf("expected one method rename table, got %+v", got.Names)
	}
	originals := map[string]bool{}
	for _, orig := range got.Names[0].Placeholders {
		originals[orig] = true
	}
	if !originals["left"] || !originals["right"] {
		t.Errorf("rename table misses parameters: %+v", got.Names[0].Placeholders)
	}
	names := map[string]bool{}
	for _, f := range got.Features {
		names[f.Name] = true
	}
	if !names["left"] || !names["right"] {
		t.Errorf("variable features should carry original names, got %v", names)
	}

	again, err := srv.handleExtractSnippet(context.Background(), request(args))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if resultText(t, again) != resultText(t, res) {
		t.Error("same seed produced different output")
	}
}

func TestExtractSnippetErrors(t *testing.T) {
	srv := NewServer(nil, nil)
	tests := []struct {
		name string
		args string
		want string
	}{
		{"missing code", `{}`, "code is required"},
		{"bad language", `{"code": "x", "language": "cobol"}`, "unsupported language"},
		{"bad limit", `{"code": "int f() { return 1; }", "max_path_length": 0}`, "invalid configuration"},
		{"bad json", `{"code": `, "invalid arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := srv.handleExtractSnippet(context.Background(), request(tt.args))
			if err != nil {
				t.Fatalf("handler: %v", err)
			}
			if !res.IsError {
				t.Fatal("expected an error result")
			}
			if text := resultText(t, res); !strings.Contains(text, tt.want) {
				t.Errorf("error %q does not mention %q", text, tt.want)
			}
		})
	}
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Add.java")
	if err := os.WriteFile(path, []byte("class Add { int f(int a, int b) { return a + b; } }"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.NoHash = true
	srv := NewServer(cfg, nil)

	res, err := srv.handleExtractFile(context.Background(), request(`{"path": "`+filepath.ToSlash(path)+`"}`))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	var got extractResponse
	decode(t, res, &got)
	if got.Path != filepath.ToSlash(path) || got.FeatureCount != 1 {
		t.Errorf("unexpected response: %+v", got)
	}
	if !hasRecord(got.Features, "a", "(identifier0)^(binary_expression:+)_(identifier1)", "b") {
		t.Errorf("missing a+b record in %q", got.Output)
	}

	res, err = srv.handleExtractFile(context.Background(), request(`{"path": "relative/Add.java"}`))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !res.IsError {
		t.Error("relative path should be rejected")
	}

	res, err = srv.handleExtractFile(context.Background(), request(`{"path": "`+filepath.ToSlash(filepath.Join(dir, "Missing.java"))+`"}`))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !res.IsError {
		t.Error("missing file should be an error result")
	}
}

func TestLookupNames(t *testing.T) {
	ctx := context.Background()
	srv := NewServer(nil, nil)
	res, err := srv.handleLookupNames(ctx, request(`{"file": "A.java"}`))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected an error without a name store")
	}

	store, err := namestore.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer store.Close()
	run, err := store.BeginRun(ctx, "")
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := store.SaveNames(ctx, "A.java", obfuscate.NameMap{
		0: {Name: "add", Placeholders: map[string]string{"VAR_4": "left"}},
	}); err != nil {
		t.Fatalf("SaveNames: %v", err)
	}

	srv = NewServer(nil, store)
	res, err = srv.handleLookupNames(ctx, request(`{"file": "A.java"}`))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	var got struct {
		RunID   string            `json:"run_id"`
		Count   int               `json:"count"`
		Methods []methodNamesView `json:"methods"`
	}
	decode(t, res, &got)
	if got.RunID != run || got.Count != 1 {
		t.Errorf("unexpected response: %+v", got)
	}
	if len(got.Methods) != 1 || got.Methods[0].Placeholders["VAR_4"] != "left" {
		t.Errorf("unexpected methods: %+v", got.Methods)
	}

	res, err = srv.handleLookupNames(ctx, request(`{"file": "B.java"}`))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !res.IsError {
		t.Error("unknown file should be an error result")
	}
}
