package readfiles

import (
	"path/filepath"
	"strings"

	"github.com/notargets/gomesh/mesh"
)

// ReadMeshFile reads a mesh in any of the supported formats, dispatching
// on the file extension
func ReadMeshFile(filename string, useSetNames, verbose bool) *mesh.Mesh {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".exo", ".e":
		return ReadExodus(filename, useSetNames, verbose)
	case ".vtu":
		return ReadVTU(filename, verbose)
	default:
		readErrorf("unsupported mesh file format: %s", filename)
	}
	return nil
}
