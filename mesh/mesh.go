package mesh

import (
	"fmt"
	"sort"
	"strings"
)

// PointField is a named per-point array with one or more components.
// Data is interleaved per point: len(Data) == Components * npoints.
type PointField struct {
	Components int
	Data       []float64
}

// CellBlock is a run of same-type cells with their vertex connectivity
type CellBlock struct {
	Type ElementType
	Conn [][]int // [ncells][nodes_per_cell], 0-based point indices
}

// Mesh is the format-neutral in-memory mesh shared by all readers.
// Cells are numbered globally and contiguously across blocks in block
// order; that numbering is what CellSets and CellData refer to.
type Mesh struct {
	Points     [][3]float64
	CellBlocks []CellBlock

	PointData map[string]PointField
	CellData  map[string][]float64 // contiguous across blocks, in block order

	PointSets map[string][]int
	CellSets  map[string][]int
}

// NewMesh creates an empty mesh with initialized maps
func NewMesh() *Mesh {
	return &Mesh{
		PointData: make(map[string]PointField),
		CellData:  make(map[string][]float64),
		PointSets: make(map[string][]int),
		CellSets:  make(map[string][]int),
	}
}

// NumCells returns the total cell count across all blocks
func (m *Mesh) NumCells() (n int) {
	for _, cb := range m.CellBlocks {
		n += len(cb.Conn)
	}
	return
}

// Check verifies the structural invariants: every connectivity index is a
// valid point index, per-point arrays match the point count and per-cell
// arrays match the global cell count.
func (m *Mesh) Check() error {
	np := len(m.Points)
	for b, cb := range m.CellBlocks {
		want := cb.Type.NumNodes()
		for c, conn := range cb.Conn {
			if len(conn) != want {
				return fmt.Errorf("block %d cell %d: %s needs %d nodes, have %d",
					b, c, cb.Type, want, len(conn))
			}
			for _, v := range conn {
				if v < 0 || v >= np {
					return fmt.Errorf("block %d cell %d references point %d, mesh has %d points",
						b, c, v, np)
				}
			}
		}
	}
	for name, pf := range m.PointData {
		if len(pf.Data) != pf.Components*np {
			return fmt.Errorf("point data %q: have %d values, want %d", name, len(pf.Data), pf.Components*np)
		}
	}
	nc := m.NumCells()
	for name, cd := range m.CellData {
		if len(cd) != nc {
			return fmt.Errorf("cell data %q: have %d values, want %d", name, len(cd), nc)
		}
	}
	for name, set := range m.PointSets {
		for _, v := range set {
			if v < 0 || v >= np {
				return fmt.Errorf("point set %q references point %d, mesh has %d points", name, v, np)
			}
		}
	}
	for name, set := range m.CellSets {
		for _, v := range set {
			if v < 0 || v >= nc {
				return fmt.Errorf("cell set %q references cell %d, mesh has %d cells", name, v, nc)
			}
		}
	}
	return nil
}

// String prints a mesh inventory
func (m *Mesh) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Mesh: %d points, %d cells\n", len(m.Points), m.NumCells())
	for _, cb := range m.CellBlocks {
		fmt.Fprintf(&sb, "  block %s: %d cells\n", cb.Type, len(cb.Conn))
	}
	if len(m.PointSets) > 0 {
		fmt.Fprintf(&sb, "  point sets:\n")
		for _, name := range sortedKeys(m.PointSets) {
			fmt.Fprintf(&sb, "    %s: %d points\n", name, len(m.PointSets[name]))
		}
	}
	if len(m.CellSets) > 0 {
		fmt.Fprintf(&sb, "  cell sets:\n")
		for _, name := range sortedKeys(m.CellSets) {
			fmt.Fprintf(&sb, "    %s: %d cells\n", name, len(m.CellSets[name]))
		}
	}
	return sb.String()
}

func sortedKeys(m map[string][]int) (keys []string) {
	keys = make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return
}
