package explore

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/CodeFusionAgent/codefusion/cache"
	"github.com/CodeFusionAgent/codefusion/llm"
)

// RegisterCoreTools registers the built-in tools for every action kind the
// executor validates. The generator and cache may be nil; the corresponding
// tools then fail with a descriptive error when invoked.
func RegisterCoreTools(reg *Registry, ws Workspace, gen llm.Generator, resultCache *cache.Cache) {
	registerScanDirectory(reg, ws)
	registerListFiles(reg, ws)
	registerReadFile(reg, ws)
	registerSearchFiles(reg, ws)
	registerAnalyzeCode(reg, ws)
	registerLLMTools(reg, gen)
	registerCacheTools(reg, resultCache)
}

const defaultScanDepth = 2

func registerScanDirectory(reg *Registry, ws Workspace) {
	reg.Register(ActionScanDirectory, func(ctx context.Context, params map[string]any) (any, error) {
		path, _ := GetStringParam(params, "path")
		depth, ok := GetIntParam(params, "depth")
		if !ok || depth <= 0 {
			depth = defaultScanDepth
		}
		return scanTree(ws, path, depth)
	})
}

// scanTree collects entries down to the requested depth, breadth-first from
// the starting directory.
func scanTree(ws Workspace, path string, depth int) ([]FileEntry, error) {
	entries, err := ws.ListDirectory(path)
	if err != nil {
		return nil, err
	}
	if depth <= 1 {
		return entries, nil
	}
	result := append([]FileEntry(nil), entries...)
	for _, entry := range entries {
		if !entry.IsDir {
			continue
		}
		sub, err := scanTree(ws, entry.Path, depth-1)
		if err != nil {
			continue // inaccessible subtree; keep what we have
		}
		result = append(result, sub...)
	}
	return result, nil
}

func registerListFiles(reg *Registry, ws Workspace) {
	reg.Register(ActionListFiles, func(ctx context.Context, params map[string]any) (any, error) {
		pattern, _ := GetStringParam(params, "pattern")
		return ws.Glob(pattern)
	})
}

func registerReadFile(reg *Registry, ws Workspace) {
	reg.Register(ActionReadFile, func(ctx context.Context, params map[string]any) (any, error) {
		path, _ := GetStringParam(params, "path")
		return ws.ReadFile(path)
	})
}

func registerSearchFiles(reg *Registry, ws Workspace) {
	reg.Register(ActionSearchFiles, func(ctx context.Context, params map[string]any) (any, error) {
		pattern, _ := GetStringParam(params, "pattern")
		maxResults, _ := GetIntParam(params, "max_results")
		return ws.Grep(pattern, maxResults)
	})
}

var functionPattern = regexp.MustCompile(`(?m)^\s*(func |def |function |fn |public |private )`)

// CodeAnalysis is the result of the analyze_code tool: cheap structural
// metrics, not a semantic understanding of the file.
type CodeAnalysis struct {
	Path      string `json:"path"`
	Language  string `json:"language"`
	Lines     int    `json:"lines"`
	Functions int    `json:"functions"`
	Todos     int    `json:"todos"`
}

func registerAnalyzeCode(reg *Registry, ws Workspace) {
	reg.Register(ActionAnalyzeCode, func(ctx context.Context, params map[string]any) (any, error) {
		path, _ := GetStringParam(params, "path")
		content, err := ws.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return &CodeAnalysis{
			Path:      path,
			Language:  languageForExt(filepath.Ext(path)),
			Lines:     strings.Count(content, "\n") + 1,
			Functions: len(functionPattern.FindAllString(content, -1)),
			Todos:     strings.Count(content, "TODO") + strings.Count(content, "FIXME"),
		}, nil
	})
}

func languageForExt(ext string) string {
	switch ext {
	case ".go":
		return "go"
	case ".py":
		return "python"
	case ".js", ".jsx":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".rs":
		return "rust"
	case ".md":
		return "markdown"
	default:
		return strings.TrimPrefix(ext, ".")
	}
}

func registerLLMTools(reg *Registry, gen llm.Generator) {
	reg.Register(ActionLLMReasoning, func(ctx context.Context, params map[string]any) (any, error) {
		if gen == nil {
			return nil, fmt.Errorf("llm_reasoning: no generator configured")
		}
		prompt, _ := GetStringParam(params, "prompt")
		return gen.Generate(ctx, prompt)
	})
	reg.Register(ActionLLMSummary, func(ctx context.Context, params map[string]any) (any, error) {
		if gen == nil {
			return nil, fmt.Errorf("llm_summary: no generator configured")
		}
		prompt, _ := GetStringParam(params, "prompt")
		return gen.Generate(ctx, "Summarize the following concisely:\n\n"+prompt)
	})
}

func registerCacheTools(reg *Registry, resultCache *cache.Cache) {
	reg.Register(ActionCacheLookup, func(ctx context.Context, params map[string]any) (any, error) {
		if resultCache == nil {
			return nil, fmt.Errorf("cache_lookup: no cache configured")
		}
		key, _ := GetStringParam(params, "key")
		value, ok := resultCache.Get(key)
		if !ok {
			return nil, fmt.Errorf("cache_lookup: miss for key %q", key)
		}
		return value, nil
	})
	reg.Register(ActionCacheStore, func(ctx context.Context, params map[string]any) (any, error) {
		if resultCache == nil {
			return nil, fmt.Errorf("cache_store: no cache configured")
		}
		key, _ := GetStringParam(params, "key")
		resultCache.Set(key, params["value"])
		return fmt.Sprintf("stored %q", key), nil
	})
}
