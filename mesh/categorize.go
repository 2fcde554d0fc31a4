package mesh

import "fmt"

// FieldGroup is the outcome of categorizing one or more flat field names
// into a logical field. Name is the common prefix (or the full name for a
// single field), Indices are the positions of the constituent names in the
// original name list, in component order.
type FieldGroup struct {
	Name    string
	Indices []int
}

// CategorizeFieldNames partitions a list of point-field names into
// singles, <name>_R/<name>_Z pairs and <name>X/<name>Y/<name>Z triples by
// suffix convention. A name ending in "X" claims its same-prefix "Y" and
// "Z" siblings only if both exist; a name ending in "_R" claims a
// same-prefix "_Z" if present. Names are claimed in scan order, so the
// earliest candidate wins when a name could belong to more than one group;
// changing the scan order changes the grouping of ambiguous names.
// Every name must end up claimed exactly once, otherwise the field-naming
// metadata is corrupt and an error is returned.
func CategorizeFieldNames(names []string) (singles, doubles, triples []FieldGroup, err error) {
	accounted := make([]bool, len(names))
	for k, name := range names {
		if accounted[k] {
			continue
		}
		switch {
		case len(name) >= 1 && name[len(name)-1] == 'X':
			prefix := name[:len(name)-1]
			iy := indexOf(names, accounted, prefix+"Y")
			iz := indexOf(names, accounted, prefix+"Z")
			if iy >= 0 && iz >= 0 {
				triples = append(triples, FieldGroup{Name: prefix, Indices: []int{k, iy, iz}})
				accounted[k], accounted[iy], accounted[iz] = true, true, true
			} else {
				singles = append(singles, FieldGroup{Name: name, Indices: []int{k}})
				accounted[k] = true
			}
		case len(name) >= 2 && name[len(name)-2:] == "_R":
			prefix := name[:len(name)-2]
			iz := indexOf(names, accounted, prefix+"_Z")
			if iz >= 0 {
				doubles = append(doubles, FieldGroup{Name: prefix, Indices: []int{k, iz}})
				accounted[k], accounted[iz] = true, true
			} else {
				singles = append(singles, FieldGroup{Name: name, Indices: []int{k}})
				accounted[k] = true
			}
		default:
			singles = append(singles, FieldGroup{Name: name, Indices: []int{k}})
			accounted[k] = true
		}
	}
	for k, ok := range accounted {
		if !ok {
			err = fmt.Errorf("field name %q was not accounted for during categorization", names[k])
			return
		}
	}
	return
}

// indexOf finds an unclaimed name; a name already claimed by an earlier
// group cannot join a second one
func indexOf(names []string, accounted []bool, s string) int {
	for i, n := range names {
		if n == s && !accounted[i] {
			return i
		}
	}
	return -1
}
