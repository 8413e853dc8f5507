package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geolayer/internal/dataset"
)

// PayloadFile is the descriptor file name inside a layer directory.
const PayloadFile = "choropleth.json"

// FileSource reads <dir>/<layer>/choropleth.json.
type FileSource struct {
	dir string
}

// NewFileSource creates a FileSource rooted at dir.
func NewFileSource(dir string) (*FileSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "store: open layer dir %s", dir)
	}
	if !info.IsDir() {
		return nil, eris.Errorf("store: %s is not a directory", dir)
	}
	return &FileSource{dir: dir}, nil
}

// Load reads and decodes one layer.
func (s *FileSource) Load(_ context.Context, layer string) (*dataset.Descriptor, error) {
	if err := ValidateLayerName(layer); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, layer, PayloadFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(layer)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "store: read layer %s", layer)
	}
	return dataset.DecodeDescriptor(layer, data)
}

// List returns every subdirectory holding a payload, sorted by name.
// Unreadable payloads are listed without type information.
func (s *FileSource) List(ctx context.Context) ([]LayerInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, eris.Wrapf(err, "store: list %s", s.dir)
	}
	var out []LayerInfo
	for _, e := range entries {
		if !e.IsDir() || ValidateLayerName(e.Name()) != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.dir, e.Name(), PayloadFile)); err != nil {
			continue
		}
		info := LayerInfo{Name: e.Name()}
		if d, err := s.Load(ctx, e.Name()); err == nil {
			info.Type = d.Type
			info.GeometryRef = d.GeometryRef
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Close is a no-op.
func (s *FileSource) Close() error { return nil }
