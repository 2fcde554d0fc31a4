package disc

import (
	"fmt"
	"sort"

	"github.com/notargets/gomesh/mesh"
)

// DefaultField is the field key elements are filed under until a deck
// assigns them to a specific field
const DefaultField = "structure"

// Geometry categories a node membership can belong to, ordered from
// point to volume. The abbreviations appear in exported array names.
var MembershipCategories = []string{"point", "line", "surf", "vol"}

// Node is one solver-facing mesh point: coordinates, named scalar data,
// fiber direction vectors, and set memberships in the four geometry
// categories. Memberships are weak references, holding only the set
// identifier string.
type Node struct {
	Id     int
	Coords [3]float64
	Data   map[string]float64
	Fibers map[string][3]float64
	// memberships indexed like MembershipCategories
	PointSets []string
	LineSets  []string
	SurfSets  []string
	VolSets   []string
}

func NewNode(id int, coords [3]float64) *Node {
	return &Node{
		Id:     id,
		Coords: coords,
		Data:   make(map[string]float64),
		Fibers: make(map[string][3]float64),
	}
}

// Memberships returns the membership list for a geometry category
func (n *Node) Memberships(category string) []string {
	switch category {
	case "point":
		return n.PointSets
	case "line":
		return n.LineSets
	case "surf":
		return n.SurfSets
	case "vol":
		return n.VolSets
	}
	panic(fmt.Errorf("unknown membership category %s", category))
}

// AddMembership appends a set identifier to the category's membership
// list unless already present
func (n *Node) AddMembership(category, setId string) {
	for _, id := range n.Memberships(category) {
		if id == setId {
			return
		}
	}
	switch category {
	case "point":
		n.PointSets = append(n.PointSets, setId)
	case "line":
		n.LineSets = append(n.LineSets, setId)
	case "surf":
		n.SurfSets = append(n.SurfSets, setId)
	case "vol":
		n.VolSets = append(n.VolSets, setId)
	}
}

// Element is one solver-facing cell: its shape, 0-based node indices,
// named scalar data (including the "block" group id), deck options
// (including the MAT material reference) and fiber direction vectors
type Element struct {
	Id      int
	Shape   mesh.ElementType
	Nodes   []int
	Data    map[string]float64
	Options map[string]interface{}
	Fibers  map[string][3]float64
}

func NewElement(id int, shape mesh.ElementType, nodes []int) *Element {
	return &Element{
		Id:      id,
		Shape:   shape,
		Nodes:   nodes,
		Data:    make(map[string]float64),
		Options: make(map[string]interface{}),
		Fibers:  make(map[string][3]float64),
	}
}

// Block returns the element's 0-based block index
func (e *Element) Block() int {
	return int(e.Data["block"])
}

// Material returns the element's material id, if one was attached
func (e *Element) Material() (int, bool) {
	m, ok := e.Options["MAT"].(int)
	return m, ok
}

// BlockRegistry maps a 0-based block index to the block's cell indices
// in the canonical contiguous numbering
type BlockRegistry map[int][]int

// Discretization is the solver-facing mesh. It is built fresh per
// conversion run, mutated in place during enrichment, and consumed once
// by the exporter.
type Discretization struct {
	Nodes     []*Node
	Elements  map[string][]*Element // field key -> elements
	Blocks    BlockRegistry
	PointSets map[string][]int // node sets carried over from the source mesh
}

func NewDiscretization() *Discretization {
	return &Discretization{
		Elements:  make(map[string][]*Element),
		Blocks:    make(BlockRegistry),
		PointSets: make(map[string][]int),
	}
}

// NumElements counts elements across all fields
func (d *Discretization) NumElements() (n int) {
	for _, elems := range d.Elements {
		n += len(elems)
	}
	return
}

// AllElements returns every element ordered by id
func (d *Discretization) AllElements() []*Element {
	all := make([]*Element, 0, d.NumElements())
	for _, elems := range d.Elements {
		all = append(all, elems...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Id < all[j].Id })
	return all
}

func (d *Discretization) String() string {
	s := fmt.Sprintf("Discretization with %d nodes, %d elements\n",
		len(d.Nodes), d.NumElements())
	fields := make([]string, 0, len(d.Elements))
	for f := range d.Elements {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		s += fmt.Sprintf("  Field %s: %d elements\n", f, len(d.Elements[f]))
	}
	blocks := make([]int, 0, len(d.Blocks))
	for b := range d.Blocks {
		blocks = append(blocks, b)
	}
	sort.Ints(blocks)
	for _, b := range blocks {
		s += fmt.Sprintf("  Block %d: %d elements\n", b+1, len(d.Blocks[b]))
	}
	return s
}
