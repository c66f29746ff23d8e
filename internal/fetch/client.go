package fetch

import "context"

// Client adapts the package-level fetch functions to the page-fetcher shape
// the pipeline expects. It is the non-browser alternative to a chromedp
// session and is safe for concurrent use.
type Client struct {
	opts *Options
}

// NewClient returns a client with the given options, or defaults when nil.
func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Client{opts: opts}
}

// Fetch retrieves the page and returns its HTML.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	result, err := URL(ctx, url, c.opts)
	if err != nil {
		return "", err
	}
	return result.HTML, nil
}
