package arrival

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
)

// Loader reads declaration files through afs, so any supported scheme
// (file, mem, embed, cloud storage) can hold them.
type Loader struct {
	fs      afs.Service
	baseURL string
	options []storage.Option
}

// Load parses the declaration at URL into a feed. Relative URLs are resolved
// against the loader base URL.
func (l *Loader) Load(ctx context.Context, URL string) (*Feed, error) {
	if l.baseURL != "" && url.IsRelative(URL) {
		URL = url.Join(l.baseURL, URL)
	}
	data, err := l.fs.DownloadWithURL(ctx, URL, l.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load arrivals %v: %w", URL, err)
	}
	descriptors, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse arrivals %v: %w", URL, err)
	}
	return NewFeed(descriptors...), nil
}

// NewLoader creates a loader.
func NewLoader(fs afs.Service, baseURL string, options ...storage.Option) *Loader {
	return &Loader{fs: fs, baseURL: baseURL, options: options}
}
