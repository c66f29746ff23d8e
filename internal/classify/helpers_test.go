package classify

import (
	"context"

	"github.com/jonathan/jobscout/internal/llm"
)

// staticClient is an llm.Client returning one canned response or error.
type staticClient struct {
	response string
	err      error
}

func (s staticClient) GenerateContent(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return s.response, s.err
}

func (s staticClient) GenerateJSON(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return s.response, s.err
}

func (s staticClient) Close() error { return nil }
