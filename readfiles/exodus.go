package readfiles

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/notargets/gomesh/mesh"
)

var elemVarRe = regexp.MustCompile(`vals_elem_var(\d+)?(?:eb(\d+))?`)

// ReadExodus reads an Exodus II mesh file into a generic mesh. When
// useSetNames is set, point and cell sets are keyed by the names stored
// in the file instead of their one-based ordinals. Malformed input
// panics with a ReadError.
func ReadExodus(filename string, useSetNames, verbose bool) *mesh.Mesh {
	if verbose {
		fmt.Printf("Reading Exodus mesh file [%s]\n", filename)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		readErrorf("unable to read file %s: %v", filename, err)
	}
	return readExodusData(data, useSetNames, verbose)
}

func readExodusData(data []byte, useSetNames, verbose bool) *mesh.Mesh {
	var (
		nc             = parseNC(data)
		m              = mesh.NewMesh()
		pointDataNames []string
		cellDataNames  []string
		pd             = make(map[int][]float64)         // nodal var index -> first step values
		cd             = make(map[int]map[int][]float64) // elem var index -> block -> values
		nsNames        []string
		ebNames        []string
		nodeSets       [][]int
		cellSetKeys    []string
	)
	npoints, ok := nc.dimLength("num_nodes")
	if !ok {
		readErrorf("exodus: dimension num_nodes not present")
	}
	m.Points = make([][3]float64, npoints)

	elementRunningIndex := 0
	for _, v := range nc.VarList {
		key := v.Name
		switch {
		case strings.HasPrefix(key, "connect"):
			typeName, _ := v.Atts["elem_type"].(string)
			et, ok := mesh.ExodusTypeMap[strings.ToUpper(typeName)]
			if !ok {
				panic(UnsupportedElementTypeError{TypeName: typeName})
			}
			raw := nc.Ints(key)
			nper := et.NumNodes()
			ncells := len(raw) / nper
			conn := make([][]int, ncells)
			for i := range conn {
				conn[i] = make([]int, nper)
				for j := 0; j < nper; j++ {
					conn[i][j] = raw[i*nper+j] - 1 // Exodus is 1-based
				}
			}
			m.CellBlocks = append(m.CellBlocks, mesh.CellBlock{Type: et, Conn: conn})
			setKey := strconv.Itoa(len(cellSetKeys) + 1)
			ids := make([]int, ncells)
			for i := range ids {
				ids[i] = elementRunningIndex + i
			}
			m.CellSets[setKey] = ids
			cellSetKeys = append(cellSetKeys, setKey)
			elementRunningIndex += ncells
		case key == "coord":
			vals := nc.Floats(key)
			ndim := len(vals) / npoints
			for d := 0; d < ndim && d < 3; d++ {
				for i := 0; i < npoints; i++ {
					m.Points[i][d] = vals[d*npoints+i]
				}
			}
		case key == "coordx":
			for i, x := range nc.Floats(key) {
				m.Points[i][0] = x
			}
		case key == "coordy":
			for i, x := range nc.Floats(key) {
				m.Points[i][1] = x
			}
		case key == "coordz":
			for i, x := range nc.Floats(key) {
				m.Points[i][2] = x
			}
		case key == "name_nod_var":
			pointDataNames = nc.Strings(key)
		case strings.HasPrefix(key, "vals_nod_var"):
			idx := 0
			if len(key) > len("vals_nod_var") {
				idx = atoiOrPanic(key[len("vals_nod_var"):]) - 1
			}
			// Only the first time step is carried over
			pd[idx] = nc.RecordFloats(key, 0)
			if nc.NumRecs > 1 {
				fmt.Printf("Warning: skipping time step data in %s\n", key)
			}
		case key == "name_elem_var":
			cellDataNames = nc.Strings(key)
		case strings.HasPrefix(key, "vals_elem_var"):
			groups := elemVarRe.FindStringSubmatch(key)
			idx, block := 0, 0
			if groups[1] != "" {
				idx = atoiOrPanic(groups[1]) - 1
			}
			if groups[2] != "" {
				block = atoiOrPanic(groups[2]) - 1
			}
			if _, ok := cd[idx]; !ok {
				cd[idx] = make(map[int][]float64)
			}
			cd[idx][block] = nc.RecordFloats(key, 0)
			if nc.NumRecs > 1 {
				fmt.Printf("Warning: skipping time step data in %s\n", key)
			}
		case key == "ns_names":
			nsNames = nc.Strings(key)
		case key == "eb_names":
			ebNames = nc.Strings(key)
		case strings.HasPrefix(key, "node_ns"):
			ids := nc.Ints(key)
			for i := range ids {
				ids[i]-- // Exodus is 1-based
			}
			nodeSets = append(nodeSets, ids)
		}
	}

	attachPointData(m, pointDataNames, pd)
	attachCellData(m, cellDataNames, cd)

	for i, ids := range nodeSets {
		m.PointSets[strconv.Itoa(i+1)] = ids
	}
	if useSetNames {
		m.PointSets = make(map[string][]int)
		for i, ids := range nodeSets {
			if i < len(nsNames) {
				m.PointSets[nsNames[i]] = ids
			}
		}
		named := make(map[string][]int)
		for i, key := range cellSetKeys {
			if i < len(ebNames) {
				named[ebNames[i]] = m.CellSets[key]
			}
		}
		m.CellSets = named
	}

	if verbose {
		fmt.Printf("%s", m)
	}
	return m
}

// attachPointData groups the flat nodal variables into scalar and vector
// fields. Names ending in X/Y/Z (or _R/_Z) that occur as complete pairs
// or triplets become one multi-component field under the stem name.
func attachPointData(m *mesh.Mesh, names []string, pd map[int][]float64) {
	singles, doubles, triples, err := mesh.CategorizeFieldNames(names)
	if err != nil {
		readErrorf("exodus: %v", err)
	}
	lookup := func(idx int) []float64 {
		vals, ok := pd[idx]
		if !ok {
			readErrorf("exodus: nodal variable %d has no values", idx+1)
		}
		return vals
	}
	for _, g := range singles {
		m.PointData[g.Name] = mesh.PointField{Components: 1, Data: lookup(g.Indices[0])}
	}
	for _, g := range doubles {
		a, b := lookup(g.Indices[0]), lookup(g.Indices[1])
		data := make([]float64, 2*len(a))
		for i := range a {
			data[2*i] = a[i]
			data[2*i+1] = b[i]
		}
		m.PointData[g.Name] = mesh.PointField{Components: 2, Data: data}
	}
	for _, g := range triples {
		a, b, c := lookup(g.Indices[0]), lookup(g.Indices[1]), lookup(g.Indices[2])
		data := make([]float64, 3*len(a))
		for i := range a {
			data[3*i] = a[i]
			data[3*i+1] = b[i]
			data[3*i+2] = c[i]
		}
		m.PointData[g.Name] = mesh.PointField{Components: 3, Data: data}
	}
}

// attachCellData merges per-block element variables into one flat array
// per name, ordered by block
func attachCellData(m *mesh.Mesh, names []string, cd map[int]map[int][]float64) {
	indices := make([]int, 0, len(cd))
	for idx := range cd {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for _, idx := range indices {
		if idx >= len(names) {
			continue
		}
		blocks := make([]int, 0, len(cd[idx]))
		for b := range cd[idx] {
			blocks = append(blocks, b)
		}
		sort.Ints(blocks)
		var merged []float64
		for _, b := range blocks {
			merged = append(merged, cd[idx][b]...)
		}
		m.CellData[names[idx]] = merged
	}
}

func atoiOrPanic(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		readErrorf("exodus: bad numeric suffix in variable name: %q", s)
	}
	return n
}
