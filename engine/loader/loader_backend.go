package loader

import "github.com/Carmen-Shannon/oxy-jewel/engine/model"

// loaderBackend turns the bytes of one model file format into a GeometryAsset.
type loaderBackend interface {
	// Import builds a GeometryAsset from file contents.
	//
	// Parameters:
	//   - data: the file contents
	//   - baseDir: directory for resources referenced by relative path
	//   - name: the asset name
	//   - names: the node/mesh name mapping
	//
	// Returns:
	//   - *model.GeometryAsset: the imported asset
	//   - error: error if the data cannot be imported
	Import(data []byte, baseDir, name string, names NameMap) (*model.GeometryAsset, error)
}
