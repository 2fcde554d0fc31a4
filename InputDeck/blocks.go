package InputDeck

import (
	"fmt"
	"sort"
)

// ElementBlock is one block declaration from a geometry section's
// ELEMENT_BLOCKS list: the block's 1-based id, its field key (e.g.
// SOLID), a material reference and up to three fiber direction vectors
type ElementBlock struct {
	ID       int
	Field    string
	Material int
	Fibers   map[string][3]float64 // keyed FIBER1..FIBER3
	Params   map[string]interface{}
}

// ElementBlocks collects the block declarations from every geometry
// section, sorted by block id. Each entry is a mapping holding ID plus
// exactly one field key whose value carries the material and fiber data.
func (dk *Deck) ElementBlocks() (blocks []ElementBlock) {
	for _, name := range dk.GeometrySections() {
		sec, ok := dk.Sections[name].(map[string]interface{})
		if !ok {
			continue
		}
		list, present := sec["ELEMENT_BLOCKS"]
		if !present {
			continue
		}
		items, ok := list.([]interface{})
		if !ok {
			panic(fmt.Errorf("section %s: ELEMENT_BLOCKS is not a list", name))
		}
		for i, item := range items {
			entry, ok := item.(map[string]interface{})
			if !ok {
				panic(fmt.Errorf("section %s: ELEMENT_BLOCKS item %d is not a mapping", name, i))
			}
			blocks = append(blocks, parseElementBlock(name, i, entry))
		}
	}
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].ID < blocks[j].ID })
	return
}

func parseElementBlock(section string, index int, entry map[string]interface{}) (blk ElementBlock) {
	where := fmt.Sprintf("section %s: ELEMENT_BLOCKS item %d", section, index)
	id, present := entry["ID"]
	if !present {
		panic(fmt.Errorf("%s has no ID", where))
	}
	blk.ID = mustInt(id, where+": ID")
	blk.Fibers = make(map[string][3]float64)
	blk.Params = make(map[string]interface{})
	for key, v := range entry {
		if key == "ID" {
			continue
		}
		if blk.Field != "" {
			panic(fmt.Errorf("%s declares two field keys, %s and %s", where, blk.Field, key))
		}
		blk.Field = key
		data, ok := v.(map[string]interface{})
		if !ok {
			panic(fmt.Errorf("%s: field %s is not a mapping", where, key))
		}
		for k, val := range data {
			switch {
			case k == "MAT":
				blk.Material = mustInt(val, where+": MAT")
			case k == "FIBER1" || k == "FIBER2" || k == "FIBER3":
				blk.Fibers[k] = mustVec3(val, where+": "+k)
			default:
				blk.Params[k] = val
			}
		}
	}
	if blk.Field == "" {
		panic(fmt.Errorf("%s declares no field key", where))
	}
	return
}

func mustVec3(v interface{}, what string) (vec [3]float64) {
	list, ok := v.([]interface{})
	if !ok || len(list) != 3 {
		panic(fmt.Errorf("%s: expected a 3-component vector", what))
	}
	for i, x := range list {
		f, ok := x.(float64)
		if !ok {
			panic(fmt.Errorf("%s: component %d is not a number", what, i))
		}
		vec[i] = f
	}
	return
}
