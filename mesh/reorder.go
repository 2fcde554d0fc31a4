package mesh

import "fmt"

// NodeOrderMap maps an element type to a node permutation. For a cell of
// that type, corrected[i] = original[perm[i]]: perm[i] names the
// external-format node position that lands at internal position i.
// Types without an entry pass through unchanged.
type NodeOrderMap map[ElementType][]int

// DefaultNodeOrder corrects Exodus II node ordering for the higher-order
// types whose convention differs from the internal (VTK-like) one. The
// table is data, not derivation: whether it matches a given meshing tool
// depends on that tool following the Exodus conventions, so callers may
// substitute their own table.
var DefaultNodeOrder = NodeOrderMap{
	// Exodus puts the vertical mid-edge nodes (12-15) before the top-face
	// mid-edge nodes (16-19); internally it is the other way around.
	Hex20: {
		0, 1, 2, 3, 4, 5, 6, 7,
		8, 9, 10, 11,
		16, 17, 18, 19,
		12, 13, 14, 15,
	},
	// The edge part is the Hex20 correction. The tail assumes Exodus
	// orders center first, then faces; that ordering still needs to be
	// verified against a reference implementation before trusting
	// center/face-carried data.
	Hex27: {
		0, 1, 2, 3, 4, 5, 6, 7,
		8, 9, 10, 11,
		16, 17, 18, 19,
		12, 13, 14, 15,
		21, 22, 23, 24, 25, 26, 20,
	},
	// Same vertical/top mid-edge swap as Hex20
	Wedge15: {
		0, 1, 2, 3, 4, 5,
		6, 7, 8,
		12, 13, 14,
		9, 10, 11,
	},
}

// CorrectNodeOrder returns a copy of m with the per-element node order of
// every block whose type appears in the table permuted to the internal
// convention. The input mesh is not modified. A nil table selects
// DefaultNodeOrder.
func CorrectNodeOrder(m *Mesh, table NodeOrderMap) *Mesh {
	if table == nil {
		table = DefaultNodeOrder
	}
	out := &Mesh{
		Points:     append([][3]float64(nil), m.Points...),
		CellBlocks: make([]CellBlock, len(m.CellBlocks)),
		PointData:  make(map[string]PointField, len(m.PointData)),
		CellData:   make(map[string][]float64, len(m.CellData)),
		PointSets:  make(map[string][]int, len(m.PointSets)),
		CellSets:   make(map[string][]int, len(m.CellSets)),
	}
	for name, pf := range m.PointData {
		out.PointData[name] = PointField{Components: pf.Components, Data: append([]float64(nil), pf.Data...)}
	}
	for name, cd := range m.CellData {
		out.CellData[name] = append([]float64(nil), cd...)
	}
	for name, set := range m.PointSets {
		out.PointSets[name] = append([]int(nil), set...)
	}
	for name, set := range m.CellSets {
		out.CellSets[name] = append([]int(nil), set...)
	}
	for b, cb := range m.CellBlocks {
		perm, ok := table[cb.Type]
		if ok && len(perm) != cb.Type.NumNodes() {
			panic(fmt.Errorf("node order table for %s has %d entries, type has %d nodes",
				cb.Type, len(perm), cb.Type.NumNodes()))
		}
		conn := make([][]int, len(cb.Conn))
		for c, orig := range cb.Conn {
			nodes := make([]int, len(orig))
			if ok {
				for i, p := range perm {
					nodes[i] = orig[p]
				}
			} else {
				copy(nodes, orig)
			}
			conn[c] = nodes
		}
		out.CellBlocks[b] = CellBlock{Type: cb.Type, Conn: conn}
	}
	return out
}

// InversePermutation returns the permutation that undoes perm
func InversePermutation(perm []int) []int {
	inv := make([]int, len(perm))
	for i, p := range perm {
		inv[p] = i
	}
	return inv
}
