package disc

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gomesh/InputDeck"
)

// Enrich walks the deck's boundary condition and element block sections
// and attaches the corresponding annotations to the discretization in
// place: set memberships on nodes, material and fiber data on elements.
// A deck referencing sets or blocks the mesh does not have, or using an
// unsupported entity reference kind, is fatal and panics.
func Enrich(d *Discretization, dk *InputDeck.Deck, verbose bool) {
	conditions := dk.DesignConditions()
	for _, c := range conditions {
		attachCondition(d, c, verbose)
	}
	for _, blk := range dk.ElementBlocks() {
		attachBlock(d, blk, verbose)
	}
	validateMemberships(d, conditions)
}

// attachCondition resolves a condition's entity to node indices and tags
// each node with the entity id in the condition's geometry category
func attachCondition(d *Discretization, c InputDeck.Condition, verbose bool) {
	var (
		nodeIds  []int
		entityId = strconv.Itoa(c.Entity)
		category = conditionCategory(c)
	)
	switch c.EntityType {
	case InputDeck.EntityNodeSet:
		ids, ok := d.PointSets[entityId]
		if !ok {
			panic(fmt.Errorf("%s: node set %s is not declared by the mesh",
				c.Section, entityId))
		}
		nodeIds = ids
	case InputDeck.EntityElementBlock:
		cells, ok := d.Blocks[c.Entity-1] // deck ids are 1-based
		if !ok {
			panic(fmt.Errorf("%s: element block %d is not declared by the mesh",
				c.Section, c.Entity))
		}
		nodeIds = blockNodes(d, cells)
	default:
		panic(fmt.Errorf("%s: unsupported entity reference kind %q, need %s or %s",
			c.Section, c.EntityType, InputDeck.EntityNodeSet, InputDeck.EntityElementBlock))
	}
	for _, i := range nodeIds {
		if i < 0 || i >= len(d.Nodes) {
			panic(fmt.Errorf("%s: node index %d out of range", c.Section, i))
		}
		d.Nodes[i].AddMembership(category, entityId)
	}
	if verbose {
		fmt.Printf("Condition %s E%d: tagged %d nodes\n", c.Section, c.Entity, len(nodeIds))
	}
}

func conditionCategory(c InputDeck.Condition) string {
	for i, g := range InputDeck.GeometryCategories {
		if g == c.Geometry {
			return MembershipCategories[i]
		}
	}
	panic(fmt.Errorf("%s: unsupported geometry type %s", c.Section, c.Geometry))
}

// blockNodes expands a block's cells into the union of their nodes
func blockNodes(d *Discretization, cells []int) (nodeIds []int) {
	var (
		inBlock = make(map[int]bool, len(cells))
		seen    = make(map[int]bool)
	)
	for _, id := range cells {
		inBlock[id] = true
	}
	for _, el := range d.AllElements() {
		if !inBlock[el.Id] {
			continue
		}
		for _, n := range el.Nodes {
			if !seen[n] {
				seen[n] = true
				nodeIds = append(nodeIds, n)
			}
		}
	}
	return
}

// attachBlock resolves an element block declaration and stamps material,
// fibers and remaining options onto every element of the block. Fibers
// are normalized to unit length. Elements move from the default field to
// the block's field key.
func attachBlock(d *Discretization, blk InputDeck.ElementBlock, verbose bool) {
	block := blk.ID - 1 // deck ids are 1-based
	if _, ok := d.Blocks[block]; !ok {
		panic(fmt.Errorf("element block %d is not declared by the mesh", blk.ID))
	}
	fibers := make(map[string][3]float64, len(blk.Fibers))
	for name, v := range blk.Fibers {
		if norm := floats.Norm(v[:], 2); norm > 0 {
			floats.Scale(1/norm, v[:])
		}
		fibers[name] = v
	}
	count := 0
	for _, el := range d.Elements[DefaultField] {
		if el.Block() != block {
			continue
		}
		el.Options["MAT"] = blk.Material
		for k, v := range blk.Params {
			el.Options[k] = v
		}
		for name, v := range fibers {
			el.Fibers[name] = v
		}
		count++
	}
	moveBlockToField(d, block, blk.Field)
	if verbose {
		fmt.Printf("Block %d: material %d on %d elements\n", blk.ID, blk.Material, count)
	}
}

// moveBlockToField re-files a block's elements from the default field
// under the deck's field key
func moveBlockToField(d *Discretization, block int, field string) {
	if field == "" || field == DefaultField {
		return
	}
	var remaining []*Element
	for _, el := range d.Elements[DefaultField] {
		if el.Block() == block {
			d.Elements[field] = append(d.Elements[field], el)
		} else {
			remaining = append(remaining, el)
		}
	}
	d.Elements[DefaultField] = remaining
	if len(remaining) == 0 {
		delete(d.Elements, DefaultField)
	}
}

// validateMemberships checks that every membership tag on every node was
// declared by a condition of the matching geometry category
func validateMemberships(d *Discretization, conditions []InputDeck.Condition) {
	declared := make(map[string]map[string]bool)
	for _, cat := range MembershipCategories {
		declared[cat] = make(map[string]bool)
	}
	for _, c := range conditions {
		declared[conditionCategory(c)][strconv.Itoa(c.Entity)] = true
	}
	for _, n := range d.Nodes {
		for _, cat := range MembershipCategories {
			for _, id := range n.Memberships(cat) {
				if !declared[cat][id] {
					panic(fmt.Errorf("node %d carries %s membership %s that no condition declares",
						n.Id, cat, id))
				}
			}
		}
	}
}
