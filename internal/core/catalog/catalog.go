// Package catalog holds the named shape prototypes entities are built from.
// Prototypes are never handed out directly: Get returns a private copy.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/zeusync/racecollide/internal/core/observability/log"
	"github.com/zeusync/racecollide/internal/core/systems/shape"
	"github.com/zeusync/racecollide/pkg/concurrent"
)

var (
	ErrUnknownShapeType = errors.New("unknown shape type")
	ErrDuplicateShape   = errors.New("duplicate shape name")
)

type entry struct {
	shape  shape.Shape
	source string
}

// Catalog is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	shapes  map[string]entry
	digests map[string]uint64

	strict  bool
	workers int
	logger  log.Log
}

type Option func(*Catalog)

// WithStrict rejects documents with unknown shape types instead of skipping those entries.
func WithStrict(strict bool) Option {
	return func(c *Catalog) {
		c.strict = strict
	}
}

// WithWorkers caps the number of files read in parallel by LoadFiles.
func WithWorkers(workers int) Option {
	return func(c *Catalog) {
		c.workers = workers
	}
}

func WithLogger(logger log.Log) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(opts ...Option) *Catalog {
	c := &Catalog{
		shapes:  make(map[string]entry),
		digests: make(map[string]uint64),
		workers: 4,
		logger:  log.Provide(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the named prototype.
func (c *Catalog) Get(name string) (shape.Shape, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.shapes[name]
	if !ok {
		return nil, false
	}
	return e.shape.Copy(), true
}

// Add registers a single prototype that does not come from a file.
func (c *Catalog) Add(name string, s shape.Shape) error {
	if s == nil {
		return fmt.Errorf("shape %s: %w", name, shape.ErrMalformedShape)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.shapes[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrDuplicateShape)
	}
	c.shapes[name] = entry{shape: s.Copy()}
	return nil
}

// Names returns the registered prototype names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.shapes))
	for name := range c.shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.shapes)
}

// Apply replaces every prototype previously loaded from source with the shapes of doc.
// Nothing changes when doc is rejected.
func (c *Catalog) Apply(source string, doc *Document) error {
	built := make(map[string]shape.Shape, len(doc.Shapes))
	for _, cs := range doc.Shapes {
		if _, ok := built[cs.Name]; ok {
			return fmt.Errorf("%s: %s: %w", source, cs.Name, ErrDuplicateShape)
		}

		s, err := cs.Build()
		if errors.Is(err, ErrUnknownShapeType) && !c.strict {
			c.logger.Warn("Unknown shape type, skipping",
				log.String("source", source),
				log.String("name", cs.Name),
				log.String("type", cs.Type),
			)
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
		built[cs.Name] = s
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for name := range built {
		if e, ok := c.shapes[name]; ok && (e.source != source || source == "") {
			return fmt.Errorf("%s: %s: %w", source, name, ErrDuplicateShape)
		}
	}

	for name, e := range c.shapes {
		if source != "" && e.source == source {
			delete(c.shapes, name)
		}
	}
	for name, s := range built {
		c.shapes[name] = entry{shape: s, source: source}
	}

	c.logger.Debug("Shape catalog updated",
		log.String("source", source),
		log.Int("shapes", len(built)),
	)
	return nil
}

// LoadFile loads a YAML or JSON document from path. Files with a .json extension are
// decoded as JSON, anything else as YAML. It reports false when the file content has
// not changed since it was last applied.
func (c *Catalog) LoadFile(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read shape catalog: %w", err)
	}
	return c.load(path, data)
}

// LoadFiles reads and decodes the files in parallel, then applies them in argument order.
// It stops at the first failing file; files before it stay applied.
func (c *Catalog) LoadFiles(ctx context.Context, paths ...string) error {
	type source struct {
		path string
		data []byte
	}

	sources, err := concurrent.Map(ctx, paths, c.workers, func(_ context.Context, path string) (source, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return source{}, fmt.Errorf("read shape catalog: %w", err)
		}
		return source{path: path, data: data}, nil
	})
	if err != nil {
		return err
	}

	for _, src := range sources {
		if _, err = c.load(src.path, src.data); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) load(path string, data []byte) (bool, error) {
	digest := xxhash.Sum64(data)

	c.mu.RLock()
	previous, seen := c.digests[path]
	c.mu.RUnlock()
	if seen && previous == digest {
		return false, nil
	}

	var (
		doc *Document
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		doc, err = LoadJSON(bytes.NewReader(data))
	} else {
		doc, err = LoadYAML(bytes.NewReader(data))
	}
	if err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}

	if err = c.Apply(path, doc); err != nil {
		return false, err
	}

	c.mu.Lock()
	c.digests[path] = digest
	c.mu.Unlock()
	return true, nil
}
