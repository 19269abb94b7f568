package filesystem

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
)

// Loader reads file-system declarations through afs.
type Loader struct {
	fs      afs.Service
	baseURL string
	options []storage.Option
}

// Load parses the declaration at URL.
func (l *Loader) Load(ctx context.Context, URL string) (*Declaration, error) {
	if l.baseURL != "" && url.IsRelative(URL) {
		URL = url.Join(l.baseURL, URL)
	}
	data, err := l.fs.DownloadWithURL(ctx, URL, l.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load file system declaration %v: %w", URL, err)
	}
	declaration, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file system declaration %v: %w", URL, err)
	}
	return declaration, nil
}

// NewLoader creates a loader.
func NewLoader(fs afs.Service, baseURL string, options ...storage.Option) *Loader {
	return &Loader{fs: fs, baseURL: baseURL, options: options}
}
