package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentcore/core"
)

// Searcher is the backend the search tool delegates to.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, query string) (string, error)

// Search implements Searcher.
func (f SearcherFunc) Search(ctx context.Context, query string) (string, error) { return f(ctx, query) }

// MockSearcher returns a canned result for every query.
type MockSearcher struct{}

// Search implements Searcher.
func (MockSearcher) Search(_ context.Context, query string) (string, error) {
	return fmt.Sprintf("Search results for '%s': [Mock Results]", query), nil
}

// SearchTool answers free-text queries through a Searcher.
type SearchTool struct {
	backend Searcher
}

// NewSearchTool creates a search tool. A nil backend falls back to MockSearcher.
func NewSearchTool(backend Searcher) *SearchTool {
	if backend == nil {
		backend = MockSearcher{}
	}
	return &SearchTool{backend: backend}
}

// Name returns the default registration name.
func (t *SearchTool) Name() string { return "search" }

// Description returns the tool description.
func (t *SearchTool) Description() string {
	return "Search for information. Arguments: query (string)."
}

// Parameters returns the JSON schema for tool parameters.
func (t *SearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "Free-text search query"},
		},
		"required": []string{"query"},
	}
}

// Execute runs the query. Backend failures (including panics) come back as
// "Error searching: ..." strings.
func (t *SearchTool) Execute(ctx context.Context, args core.Args) (result string) {
	defer func() {
		if p := recover(); p != nil {
			result = fmt.Sprintf("Error searching: %v", p)
		}
	}()

	query := args.String(0, "query")
	out, err := t.backend.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		return fmt.Sprintf("Error searching: %v", err)
	}
	return out
}
