package disc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notargets/gomesh/InputDeck"
	"github.com/notargets/gomesh/mesh"
)

// Topology section names carrying legacy node set memberships, indexed
// like MembershipCategories
var legacyTopologySections = []string{
	"DNODE-NODE TOPOLOGY",
	"DLINE-NODE TOPOLOGY",
	"DSURF-NODE TOPOLOGY",
	"DVOL-NODE TOPOLOGY",
}

/*
ReadLegacy builds a discretization from a deck that carries its geometry
inline, the legacy way: a NODE COORDS section with one line per node,

	NODE <id> COORD <x> <y> <z>

one or more <FIELD> ELEMENTS sections with one line per element,

	<id> <field key> <shape> <node ids...> [<option> <value>...]

and D{NODE,LINE,SURF,VOL}-NODE TOPOLOGY sections assigning nodes to sets,

	NODE <id> <DNODE|DLINE|DSURF|DVOL> <set id>

All ids on disk are 1-based. Elements sharing a MAT option form one
block, in first-appearance order. Malformed sections panic.
*/
func ReadLegacy(dk *InputDeck.Deck, verbose bool) *Discretization {
	d := NewDiscretization()
	readLegacyNodes(d, dk)
	for _, name := range dk.SectionNames() {
		if strings.HasSuffix(name, InputDeck.ElementsSuffix) {
			readLegacyElements(d, dk, name)
		}
	}
	readLegacyTopology(d, dk)
	if verbose {
		fmt.Printf("%s", d)
	}
	return d
}

// sectionLines fetches a section as its list of text lines
func sectionLines(dk *InputDeck.Deck, name string) (lines []string) {
	sec, ok := dk.Section(name)
	if !ok {
		return nil
	}
	items, ok := sec.([]interface{})
	if !ok {
		panic(fmt.Errorf("section %s is not a list of lines", name))
	}
	for i, item := range items {
		line, ok := item.(string)
		if !ok {
			panic(fmt.Errorf("section %s line %d is not a string", name, i+1))
		}
		lines = append(lines, line)
	}
	return
}

func readLegacyNodes(d *Discretization, dk *InputDeck.Deck) {
	lines := sectionLines(dk, "NODE COORDS")
	if lines == nil {
		panic(fmt.Errorf("legacy deck has no NODE COORDS section"))
	}
	d.Nodes = make([]*Node, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != 6 || fields[0] != "NODE" || fields[2] != "COORD" {
			panic(fmt.Errorf("NODE COORDS: malformed line %q", line))
		}
		id := legacyInt(fields[1], line) - 1
		if id < 0 || id >= len(d.Nodes) {
			panic(fmt.Errorf("NODE COORDS: node id %d out of range in %q", id+1, line))
		}
		var coords [3]float64
		for i := 0; i < 3; i++ {
			x, err := strconv.ParseFloat(fields[3+i], 64)
			if err != nil {
				panic(fmt.Errorf("NODE COORDS: bad coordinate in %q", line))
			}
			coords[i] = x
		}
		d.Nodes[id] = NewNode(id, coords)
	}
	for i, n := range d.Nodes {
		if n == nil {
			panic(fmt.Errorf("NODE COORDS: node %d is not declared", i+1))
		}
	}
}

func readLegacyElements(d *Discretization, dk *InputDeck.Deck, section string) {
	var (
		field     = strings.ToLower(strings.TrimSuffix(section, InputDeck.ElementsSuffix))
		materials []int // first-appearance order defines the blocks
	)
	for _, line := range sectionLines(dk, section) {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			panic(fmt.Errorf("%s: malformed line %q", section, line))
		}
		id := legacyInt(fields[0], line) - 1
		shape, ok := mesh.ExodusTypeMap[strings.ToUpper(fields[2])]
		if !ok {
			panic(fmt.Errorf("%s: unsupported element shape %s in %q", section, fields[2], line))
		}
		nper := shape.NumNodes()
		if len(fields) < 3+nper {
			panic(fmt.Errorf("%s: %s needs %d nodes, line %q has fewer", section, shape, nper, line))
		}
		nodes := make([]int, nper)
		for i := range nodes {
			nodes[i] = legacyInt(fields[3+i], line) - 1
			if nodes[i] < 0 || nodes[i] >= len(d.Nodes) {
				panic(fmt.Errorf("%s: node id %d out of range in %q", section, nodes[i]+1, line))
			}
		}
		el := NewElement(id, shape, nodes)
		readLegacyOptions(el, fields[3+nper:], section, line)

		mat := -1
		if m, ok := el.Material(); ok {
			mat = m
		}
		block := -1
		for b, prev := range materials {
			if prev == mat {
				block = b
				break
			}
		}
		if block < 0 {
			block = len(materials)
			materials = append(materials, mat)
		}
		el.Data["block"] = float64(block)
		d.Blocks[block] = append(d.Blocks[block], el.Id)
		d.Elements[field] = append(d.Elements[field], el)
	}
}

// readLegacyOptions parses the trailing option tokens of an element
// line: MAT takes an integer, FIBER1..FIBER3 take three floats, anything
// else takes a single string value
func readLegacyOptions(el *Element, tokens []string, section, line string) {
	for i := 0; i < len(tokens); {
		key := tokens[i]
		switch {
		case key == "MAT":
			if i+1 >= len(tokens) {
				panic(fmt.Errorf("%s: MAT without a value in %q", section, line))
			}
			el.Options["MAT"] = legacyInt(tokens[i+1], line)
			i += 2
		case key == "FIBER1" || key == "FIBER2" || key == "FIBER3":
			if i+3 >= len(tokens) {
				panic(fmt.Errorf("%s: %s needs three components in %q", section, key, line))
			}
			var v [3]float64
			for j := 0; j < 3; j++ {
				x, err := strconv.ParseFloat(tokens[i+1+j], 64)
				if err != nil {
					panic(fmt.Errorf("%s: bad %s component in %q", section, key, line))
				}
				v[j] = x
			}
			el.Fibers[key] = v
			i += 4
		default:
			if i+1 >= len(tokens) {
				panic(fmt.Errorf("%s: option %s without a value in %q", section, key, line))
			}
			el.Options[key] = tokens[i+1]
			i += 2
		}
	}
}

func readLegacyTopology(d *Discretization, dk *InputDeck.Deck) {
	for cat, section := range legacyTopologySections {
		marker := strings.SplitN(section, "-", 2)[0] // DNODE, DLINE, ...
		for _, line := range sectionLines(dk, section) {
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[0] != "NODE" || fields[2] != marker {
				panic(fmt.Errorf("%s: malformed line %q", section, line))
			}
			id := legacyInt(fields[1], line) - 1
			if id < 0 || id >= len(d.Nodes) {
				panic(fmt.Errorf("%s: node id %d out of range in %q", section, id+1, line))
			}
			d.Nodes[id].AddMembership(MembershipCategories[cat], fields[3])
		}
	}
}

func legacyInt(s, line string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic(fmt.Errorf("expected an integer, got %q in line %q", s, line))
	}
	return n
}
