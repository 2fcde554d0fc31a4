package InputDeck

import (
	"fmt"
	"sort"
	"strings"
)

// Geometry categories a design condition can attach to, ordered from
// point to volume
var GeometryCategories = []string{"POINT", "LINE", "SURF", "VOL"}

// Entity reference kinds a design condition may use to name its mesh
// region. Anything else is unsupported.
const (
	EntityNodeSet      = "node_set_id"
	EntityElementBlock = "element_block_id"
)

// Condition is one boundary condition item from a DESIGN section
type Condition struct {
	Section    string // full section name, e.g. "DESIGN POINT DIRICH CONDITIONS"
	Geometry   string // POINT, LINE, SURF or VOL
	Entity     int    // entity id, the E key
	EntityType string // node_set_id or element_block_id
	Params     map[string]interface{}
}

// DesignConditions collects the boundary condition items from every
// DESIGN section. Each section name must contain exactly one geometry
// category token, and each item must carry an entity id and an entity
// type; a deck violating that is malformed and panics.
func (dk *Deck) DesignConditions() (conditions []Condition) {
	for _, name := range dk.SectionNames() {
		if !strings.HasPrefix(name, ConditionPrefix) {
			continue
		}
		geometry := conditionGeometry(name)
		items, ok := dk.Sections[name].([]interface{})
		if !ok {
			panic(fmt.Errorf("section %s is not a list of conditions", name))
		}
		for i, item := range items {
			entry, ok := item.(map[string]interface{})
			if !ok {
				panic(fmt.Errorf("section %s item %d is not a mapping", name, i))
			}
			c := Condition{
				Section:  name,
				Geometry: geometry,
				Params:   make(map[string]interface{}),
			}
			e, present := entry["E"]
			if !present {
				panic(fmt.Errorf("section %s item %d has no entity id E", name, i))
			}
			c.Entity = mustInt(e, fmt.Sprintf("section %s item %d: E", name, i))
			et, present := entry["ENTITY_TYPE"]
			if !present {
				panic(fmt.Errorf("section %s item %d has no ENTITY_TYPE", name, i))
			}
			c.EntityType, ok = et.(string)
			if !ok {
				panic(fmt.Errorf("section %s item %d: ENTITY_TYPE is not a string", name, i))
			}
			for k, v := range entry {
				if k != "E" && k != "ENTITY_TYPE" {
					c.Params[k] = v
				}
			}
			conditions = append(conditions, c)
		}
	}
	sortConditions(conditions)
	return
}

// conditionGeometry extracts the single geometry category token from a
// DESIGN section name
func conditionGeometry(name string) string {
	var found []string
	for _, tok := range strings.Fields(name) {
		for _, g := range GeometryCategories {
			if tok == g {
				found = append(found, g)
			}
		}
	}
	switch len(found) {
	case 0:
		panic(fmt.Errorf("no geometry category in condition section %s", name))
	case 1:
		return found[0]
	default:
		panic(fmt.Errorf("condition section %s names %d geometry categories, need exactly one",
			name, len(found)))
	}
}

// sortConditions orders conditions from point to volume, then by entity
// id within one category
func sortConditions(conditions []Condition) {
	rank := make(map[string]int, len(GeometryCategories))
	for i, g := range GeometryCategories {
		rank[g] = i
	}
	sort.SliceStable(conditions, func(i, j int) bool {
		if rank[conditions[i].Geometry] != rank[conditions[j].Geometry] {
			return rank[conditions[i].Geometry] < rank[conditions[j].Geometry]
		}
		return conditions[i].Entity < conditions[j].Entity
	})
}

func mustInt(v interface{}, what string) int {
	switch x := v.(type) {
	case float64:
		return int(x)
	case int:
		return x
	default:
		panic(fmt.Errorf("%s: expected an integer, got %T", what, v))
	}
}
