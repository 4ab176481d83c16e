package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DeusData/pathminer/internal/extract"
	"github.com/DeusData/pathminer/internal/lang"
	"github.com/DeusData/pathminer/internal/obfuscate"
)

type recordView struct {
	Source string `json:"source"`
	Path   string `json:"path"`
	Target string `json:"target"`
}

type featureView struct {
	Name    string       `json:"name"`
	Method  int          `json:"method"`
	Records []recordView `json:"records"`
}

type methodNamesView struct {
	Method       int               `json:"method"`
	Name         string            `json:"name"`
	Placeholders map[string]string `json:"placeholders"`
}

// extractor builds an extractor from the server config overridden by args.
func (s *Server) extractor(args map[string]any) (*extract.Extractor, error) {
	cfg := s.cfg
	cfg.OnlyVars = getBoolArg(args, "variables", cfg.OnlyVars)
	cfg.Obfuscate = getBoolArg(args, "obfuscate", cfg.Obfuscate)
	cfg.NoHash = getBoolArg(args, "no_hash", cfg.NoHash)
	cfg.MaxPathLength = getIntArg(args, "max_path_length", cfg.MaxPathLength)
	cfg.MaxPathWidth = getIntArg(args, "max_path_width", cfg.MaxPathWidth)
	if seed := getIntArg(args, "seed", 0); seed > 0 {
		cfg.Seed = uint64(seed)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := cfg.ExtractOptions()
	if err != nil {
		return nil, err
	}
	return extract.New(opts), nil
}

func (s *Server) handleExtractSnippet(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	code := getStringArg(args, "code")
	if code == "" {
		return errResult("code is required"), nil
	}
	l := lang.Java
	if name := getStringArg(args, "language"); name != "" {
		parsed, ok := lang.Parse(name)
		if !ok {
			return errResult(fmt.Sprintf("unsupported language: %s", name)), nil
		}
		l = parsed
	}

	e, err := s.extractor(args)
	if err != nil {
		return errResult(err.Error()), nil
	}
	res, err := e.Snippet(l, []byte(code)).Run(ctx)
	if err != nil {
		return errResult(fmt.Sprintf("extract: %v", err)), nil
	}
	return jsonResult(resultView(res, l)), nil
}

func (s *Server) handleExtractFile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := parseArgs(req)
	if err != nil {
		return errResult(err.Error()), nil
	}

	path := getStringArg(args, "path")
	if path == "" {
		return errResult("path is required"), nil
	}
	if !filepath.IsAbs(path) {
		return errResult(fmt.Sprintf("path must be absolute: %s", path)), nil
	}

	e, err := s.extractor(args)
	if err != nil {
		return errResult(err.Error()), nil
	}
	task := e.File(path)
	res, err := task.Run(ctx)
	if err != nil {
		return errResult(fmt.Sprintf("extract %s: %v", path, err)), nil
	}
	return jsonResult(resultView(res, task.Lang)), nil
}

func resultView(res *extract.Result, l lang.Language) map[string]any {
	fs := make([]featureView, 0, len(res.Features))
	records := 0
	for _, f := range res.Features {
		fv := featureView{Name: f.Name, Method: f.Method, Records: make([]recordView, len(f.Records))}
		for i, r := range f.Records {
			fv.Records[i] = recordView{Source: r.Source, Path: r.Path, Target: r.Target}
		}
		records += len(f.Records)
		fs = append(fs, fv)
	}
	out := map[string]any{
		"path":          res.Path,
		"language":      string(l),
		"state":         res.State.String(),
		"feature_count": len(fs),
		"record_count":  records,
		"features":      fs,
		"output":        res.Output,
	}
	if res.Names != nil {
		out["names"] = namesView(res.Names)
	}
	return out
}

func namesView(m obfuscate.NameMap) []methodNamesView {
	out := make([]methodNamesView, 0, len(m))
	for ord, names := range m {
		out = append(out, methodNamesView{Method: ord, Name: names.Name, Placeholders: names.Placeholders})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Method < out[j].Method })
	return out
}
