package disc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notargets/gomesh/mesh"
)

// FromMesh converts a generic mesh into a fresh discretization: one node
// per mesh point and elements grouped by block under the default field
// key. No boundary condition or material data is attached here, that is
// the enrichment pass's job.
func FromMesh(m *mesh.Mesh) *Discretization {
	d := NewDiscretization()
	d.Nodes = make([]*Node, len(m.Points))
	for i, p := range m.Points {
		d.Nodes[i] = NewNode(i, p)
	}
	attachNodeData(d, m)

	id := 0
	for b, blk := range m.CellBlocks {
		for _, conn := range blk.Conn {
			nodes := make([]int, len(conn))
			copy(nodes, conn)
			el := NewElement(id, blk.Type, nodes)
			el.Data["block"] = float64(b)
			d.Elements[DefaultField] = append(d.Elements[DefaultField], el)
			d.Blocks[b] = append(d.Blocks[b], id)
			id++
		}
	}
	attachCellData(d, m)

	// numeric cell sets carry the source's 1-based block ids, which may
	// be finer than the consecutive-type grouping above
	applyCellSetBlocks(d, m)

	for name, ids := range m.PointSets {
		set := make([]int, len(ids))
		copy(set, ids)
		d.PointSets[name] = set
	}
	return d
}

// attachNodeData distributes point fields onto the nodes: scalars by
// name, fiber vectors into the fiber map, any other multi-component
// field as per-component scalars
func attachNodeData(d *Discretization, m *mesh.Mesh) {
	suffixes := []string{"_x", "_y", "_z"}
	for name, field := range m.PointData {
		switch {
		case field.Components == 1:
			for i, n := range d.Nodes {
				n.Data[name] = field.Data[i]
			}
		case field.Components == 3 && strings.HasPrefix(strings.ToLower(name), "fiber"):
			for i, n := range d.Nodes {
				n.Fibers[name] = [3]float64{
					field.Data[3*i], field.Data[3*i+1], field.Data[3*i+2],
				}
			}
		default:
			for j := 0; j < field.Components; j++ {
				suffix := fmt.Sprintf("_%d", j)
				if field.Components <= 3 {
					suffix = suffixes[j]
				}
				for i, n := range d.Nodes {
					n.Data[name+suffix] = field.Data[i*field.Components+j]
				}
			}
		}
	}
}

func attachCellData(d *Discretization, m *mesh.Mesh) {
	for name, vals := range m.CellData {
		for _, el := range d.Elements[DefaultField] {
			el.Data[name] = vals[el.Id]
		}
	}
}

// applyCellSetBlocks rebuilds the block registry from the mesh's
// numeric cell sets when present. Set key "N" holds the cells of the
// source's block N, so the registry index is N-1.
func applyCellSetBlocks(d *Discretization, m *mesh.Mesh) {
	numeric := make(map[int][]int)
	for key, ids := range m.CellSets {
		n, err := strconv.Atoi(key)
		if err != nil {
			return // named sets carry no block numbering
		}
		numeric[n-1] = ids
	}
	if len(numeric) == 0 {
		return
	}
	byId := make(map[int]*Element, d.NumElements())
	for _, el := range d.AllElements() {
		byId[el.Id] = el
	}
	d.Blocks = make(BlockRegistry, len(numeric))
	for b, ids := range numeric {
		set := make([]int, len(ids))
		copy(set, ids)
		d.Blocks[b] = set
		for _, id := range ids {
			if el, ok := byId[id]; ok {
				el.Data["block"] = float64(b)
			}
		}
	}
}
