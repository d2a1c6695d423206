package loader

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-jewel/engine/model"
	"github.com/Carmen-Shannon/oxy-jewel/engine/resource"
)

var errUnsupportedModel = errors.New("unsupported model format")

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// NameMap names the nodes or meshes in a model file that hold each ring part, and the material
// used for the solid metal. A node matches when either its own name or its mesh name is equal.
type NameMap struct {
	Band         string
	SolidMetal   string
	Gem          string
	DefaultMetal string
}

// DefaultNameMap follows the reference ring file.
func DefaultNameMap() NameMap {
	return NameMap{
		Band:         "mesh_0",
		SolidMetal:   "mesh_9",
		Gem:          "mesh_4",
		DefaultMetal: "WhiteMetal",
	}
}

func (n NameMap) withDefaults() NameMap {
	d := DefaultNameMap()
	if n.Band == "" {
		n.Band = d.Band
	}
	if n.SolidMetal == "" {
		n.SolidMetal = d.SolidMetal
	}
	if n.Gem == "" {
		n.Gem = d.Gem
	}
	if n.DefaultMetal == "" {
		n.DefaultMetal = d.DefaultMetal
	}
	return n
}

// loader is the implementation of the Loader interface.
type loader struct {
	cache   resource.Cache[*model.GeometryAsset]
	names   NameMap
	backend loaderBackend
	preload map[string]*model.GeometryAsset
}

// Loader imports ring geometry from model files and caches each asset by path. Each path is read
// and imported at most once; failures surface as *resource.ResourceLoadError with Kind "geometry"
// and are not cached.
type Loader interface {
	// Load imports a model file, or returns the cached asset for path.
	//
	// Parameters:
	//   - ctx: context checked before the file is read
	//   - path: the .gltf or .glb file path
	//
	// Returns:
	//   - *model.GeometryAsset: the cached asset
	//   - error: a *resource.ResourceLoadError if the file is missing, unsupported or malformed
	Load(ctx context.Context, path string) (*model.GeometryAsset, error)

	// LoadReader imports a model from a stream and caches it under name. Relative buffer URIs are
	// not resolvable from a stream, so the data must be self-contained (GLB or data: URIs).
	//
	// Parameters:
	//   - name: the cache key
	//   - r: the reader providing glTF JSON or GLB bytes
	//
	// Returns:
	//   - *model.GeometryAsset: the cached asset
	//   - error: a *resource.ResourceLoadError if the data cannot be imported
	LoadReader(name string, r io.Reader) (*model.GeometryAsset, error)

	// Get retrieves a cached asset by key. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key
	//
	// Returns:
	//   - *model.GeometryAsset: the cached asset or nil
	Get(name string) *model.GeometryAsset

	// NameMap returns the name mapping used for imports.
	//
	// Returns:
	//   - NameMap: the mapping
	NameMap() NameMap

	// Loads returns how many imports from files have been started.
	//
	// Returns:
	//   - int64: the import counter
	Loads() int64
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		names:   DefaultNameMap(),
		preload: make(map[string]*model.GeometryAsset),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	l.names = l.names.withDefaults()
	l.cache = resource.NewCache("geometry", l.loadFile)
	for key, asset := range l.preload {
		l.cache.Put(key, asset)
	}
	return l
}

func (l *loader) Load(ctx context.Context, path string) (*model.GeometryAsset, error) {
	return l.cache.Get(ctx, path)
}

func (l *loader) LoadReader(name string, r io.Reader) (*model.GeometryAsset, error) {
	if asset, ok := l.cache.Peek(name); ok {
		return asset, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, resource.NewLoadError("geometry", name, fmt.Errorf("failed to read data: %w", err))
	}
	if !isGLTF(name, data) {
		return nil, resource.NewLoadError("geometry", name, errUnsupportedModel)
	}
	asset, err := l.backend.Import(data, "", name, l.names)
	if err != nil {
		return nil, resource.NewLoadError("geometry", name, err)
	}

	if !l.cache.Put(name, asset) {
		existing, _ := l.cache.Peek(name)
		return existing, nil
	}
	return asset, nil
}

func (l *loader) Get(name string) *model.GeometryAsset {
	asset, _ := l.cache.Peek(name)
	return asset
}

func (l *loader) NameMap() NameMap {
	return l.names
}

func (l *loader) Loads() int64 {
	return l.cache.Loads()
}

func (l *loader) loadFile(ctx context.Context, path string) (*model.GeometryAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !isGLTF(path, data) {
		return nil, fmt.Errorf("%w: %s", errUnsupportedModel, filepath.Ext(path))
	}
	return l.backend.Import(data, filepath.Dir(path), path, l.names)
}

// isGLTF accepts .gltf and .glb names, and any data that starts with the GLB magic or a JSON object.
func isGLTF(name string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gltf", ".glb":
		return true
	}
	if len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic {
		return true
	}
	trimmed := strings.TrimSpace(string(data[:min(len(data), 64)]))
	return strings.HasPrefix(trimmed, "{")
}
