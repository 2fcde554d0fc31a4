package disc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gomesh/mesh"
)

var legacyDeck = `
PROBLEM TYPE:
  PROBLEMTYPE: Structure
NODE COORDS:
  - NODE 1 COORD 0.0 0.0 0.0
  - NODE 2 COORD 1.0 0.0 0.0
  - NODE 3 COORD 1.0 1.0 0.0
  - NODE 4 COORD 0.0 1.0 0.0
  - NODE 5 COORD 0.0 0.0 1.0
  - NODE 6 COORD 1.0 0.0 1.0
  - NODE 7 COORD 1.0 1.0 1.0
  - NODE 8 COORD 0.0 1.0 1.0
STRUCTURE ELEMENTS:
  - 1 SOLID HEX8 1 2 3 4 5 6 7 8 MAT 1 KINEM nonlinear
  - 2 SOLID TET4 1 2 3 5 MAT 2
  - 3 SOLID TET4 2 3 4 5 MAT 2 FIBER1 0.0 1.0 0.0
DNODE-NODE TOPOLOGY:
  - NODE 1 DNODE 1
  - NODE 2 DNODE 1
DSURF-NODE TOPOLOGY:
  - NODE 5 DSURF 2
`

func TestReadLegacy(t *testing.T) {
	d := ReadLegacy(parseDeck(t, legacyDeck), false)
	require.Equal(t, 8, len(d.Nodes))
	assert.Equal(t, [3]float64{1, 1, 1}, d.Nodes[6].Coords)

	elements := d.Elements["structure"]
	require.Equal(t, 3, len(elements))
	assert.Equal(t, mesh.Hex, elements[0].Shape)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, elements[0].Nodes)
	assert.Equal(t, mesh.Tet, elements[1].Shape)
	assert.Equal(t, []int{0, 1, 2, 4}, elements[1].Nodes)

	// MAT values group elements into blocks in first-appearance order
	assert.Equal(t, 0, elements[0].Block())
	assert.Equal(t, 1, elements[1].Block())
	assert.Equal(t, 1, elements[2].Block())
	assert.Equal(t, []int{0}, d.Blocks[0])
	assert.Equal(t, []int{1, 2}, d.Blocks[1])

	mat, ok := elements[0].Material()
	require.True(t, ok)
	assert.Equal(t, 1, mat)
	assert.Equal(t, "nonlinear", elements[0].Options["KINEM"])
	assert.Equal(t, [3]float64{0, 1, 0}, elements[2].Fibers["FIBER1"])

	// topology sections fill the membership categories directly
	assert.Equal(t, []string{"1"}, d.Nodes[0].PointSets)
	assert.Equal(t, []string{"1"}, d.Nodes[1].PointSets)
	assert.Empty(t, d.Nodes[2].PointSets)
	assert.Equal(t, []string{"2"}, d.Nodes[4].SurfSets)
}

func TestReadLegacyMalformed(t *testing.T) {
	// no NODE COORDS section at all
	assert.Panics(t, func() {
		ReadLegacy(parseDeck(t, "STRUCTURE ELEMENTS:\n  - 1 SOLID TET4 1 2 3 4 MAT 1\n"), false)
	})
	// element references a node that was never declared
	assert.Panics(t, func() {
		ReadLegacy(parseDeck(t, `
NODE COORDS:
  - NODE 1 COORD 0.0 0.0 0.0
STRUCTURE ELEMENTS:
  - 1 SOLID TET4 1 2 3 4 MAT 1
`), false)
	})
	// unsupported shape name
	assert.Panics(t, func() {
		ReadLegacy(parseDeck(t, `
NODE COORDS:
  - NODE 1 COORD 0.0 0.0 0.0
STRUCTURE ELEMENTS:
  - 1 SOLID MYSTERY9 1 MAT 1
`), false)
	})
}
