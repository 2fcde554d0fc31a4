package disc

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/notargets/gomesh/mesh"
)

/*
Export flattens the discretization back into a generic mesh for
visualization. Per-node annotations become point arrays:

	node-id               node id
	d<category><entity>   1.0 on member nodes of that set, 0 elsewhere
	<fiber name>          3-component fiber vectors

and per-element annotations become cell arrays:

	element-id            element id
	element-material      material id, -1 where none was attached
	<fiber name>_x/_y/_z  element fiber components

Source node sets are carried through unchanged so a written file can be
read back with its sets intact.
*/
func Export(d *Discretization) *mesh.Mesh {
	m := mesh.NewMesh()
	m.Points = make([][3]float64, len(d.Nodes))
	for i, n := range d.Nodes {
		m.Points[i] = n.Coords
	}
	exportNodeData(d, m)

	elements := d.AllElements()
	for _, el := range elements {
		nb := len(m.CellBlocks)
		if nb == 0 || m.CellBlocks[nb-1].Type != el.Shape {
			m.CellBlocks = append(m.CellBlocks, mesh.CellBlock{Type: el.Shape})
			nb++
		}
		nodes := make([]int, len(el.Nodes))
		copy(nodes, el.Nodes)
		m.CellBlocks[nb-1].Conn = append(m.CellBlocks[nb-1].Conn, nodes)
	}
	exportElementData(d, m, elements)

	for b, cells := range d.Blocks {
		set := make([]int, len(cells))
		copy(set, cells)
		m.CellSets[strconv.Itoa(b+1)] = set
	}
	for name, ids := range d.PointSets {
		set := make([]int, len(ids))
		copy(set, ids)
		m.PointSets[name] = set
	}
	return m
}

func exportNodeData(d *Discretization, m *mesh.Mesh) {
	ids := make([]float64, len(d.Nodes))
	scalarNames := make(map[string]bool)
	fiberNames := make(map[string]bool)
	for i, n := range d.Nodes {
		ids[i] = float64(n.Id)
		for name := range n.Data {
			scalarNames[name] = true
		}
		for name := range n.Fibers {
			fiberNames[name] = true
		}
	}
	m.PointData["node-id"] = mesh.PointField{Components: 1, Data: ids}

	for name := range scalarNames {
		vals := make([]float64, len(d.Nodes))
		for i, n := range d.Nodes {
			vals[i] = n.Data[name]
		}
		m.PointData[name] = mesh.PointField{Components: 1, Data: vals}
	}
	for name := range fiberNames {
		vals := make([]float64, 3*len(d.Nodes))
		for i, n := range d.Nodes {
			v := n.Fibers[name]
			vals[3*i], vals[3*i+1], vals[3*i+2] = v[0], v[1], v[2]
		}
		m.PointData[name] = mesh.PointField{Components: 3, Data: vals}
	}
	exportMemberships(d, m)
}

// exportMemberships writes one dense membership array per geometry
// category and entity id, named d<category><entity>, holding 1.0 on the
// member nodes
func exportMemberships(d *Discretization, m *mesh.Mesh) {
	for _, cat := range MembershipCategories {
		entities := make(map[string]bool)
		for _, n := range d.Nodes {
			for _, id := range n.Memberships(cat) {
				entities[id] = true
			}
		}
		names := make([]string, 0, len(entities))
		for id := range entities {
			names = append(names, id)
		}
		sort.Strings(names)
		for _, id := range names {
			vals := make([]float64, len(d.Nodes))
			for i, n := range d.Nodes {
				for _, member := range n.Memberships(cat) {
					if member == id {
						vals[i] = 1.0
						break
					}
				}
			}
			m.PointData[fmt.Sprintf("d%s%s", cat, id)] = mesh.PointField{
				Components: 1, Data: vals,
			}
		}
	}
}

func exportElementData(d *Discretization, m *mesh.Mesh, elements []*Element) {
	var (
		n           = len(elements)
		ids         = make([]float64, n)
		materials   = make([]float64, n)
		haveMat     bool
		fiberNames  = make(map[string]bool)
		scalarNames = make(map[string]bool)
	)
	for i, el := range elements {
		ids[i] = float64(el.Id)
		materials[i] = -1
		if mat, ok := el.Material(); ok {
			materials[i] = float64(mat)
			haveMat = true
		}
		for name := range el.Fibers {
			fiberNames[name] = true
		}
		for name := range el.Data {
			if name != "block" { // the block id travels as the cell sets
				scalarNames[name] = true
			}
		}
	}
	m.CellData["element-id"] = ids
	if haveMat {
		m.CellData["element-material"] = materials
	}
	for name := range scalarNames {
		vals := make([]float64, n)
		for i, el := range elements {
			vals[i] = el.Data[name]
		}
		m.CellData[name] = vals
	}
	for name := range fiberNames {
		for axis, suffix := range []string{"_x", "_y", "_z"} {
			vals := make([]float64, n)
			for i, el := range elements {
				vals[i] = el.Fibers[name][axis]
			}
			m.CellData[name+suffix] = vals
		}
	}
}
