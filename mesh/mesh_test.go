package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeshCheck(t *testing.T) {
	m := NewMesh()
	m.Points = [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	m.CellBlocks = []CellBlock{{Type: Triangle, Conn: [][]int{{0, 1, 2}}}}
	m.PointData["TEMP"] = PointField{Components: 1, Data: []float64{1, 2, 3}}
	m.CellData["mat"] = []float64{5}
	m.PointSets["1"] = []int{0, 2}
	m.CellSets["1"] = []int{0}
	require.NoError(t, m.Check())

	// out of range connectivity
	bad := NewMesh()
	bad.Points = m.Points
	bad.CellBlocks = []CellBlock{{Type: Triangle, Conn: [][]int{{0, 1, 3}}}}
	assert.Error(t, bad.Check())

	// wrong node count for the type
	bad = NewMesh()
	bad.Points = m.Points
	bad.CellBlocks = []CellBlock{{Type: Quad, Conn: [][]int{{0, 1, 2}}}}
	assert.Error(t, bad.Check())

	// short point data
	bad = NewMesh()
	bad.Points = m.Points
	bad.PointData["TEMP"] = PointField{Components: 1, Data: []float64{1}}
	assert.Error(t, bad.Check())

	// cell data length must span all blocks
	bad = NewMesh()
	bad.Points = m.Points
	bad.CellBlocks = []CellBlock{
		{Type: Triangle, Conn: [][]int{{0, 1, 2}, {2, 1, 0}}},
	}
	bad.CellData["mat"] = []float64{5}
	assert.Error(t, bad.Check())

	// set indices must be in range
	bad = NewMesh()
	bad.Points = m.Points
	bad.PointSets["1"] = []int{7}
	assert.Error(t, bad.Check())
}

func TestElementTypeTables(t *testing.T) {
	for et := Vertex; et <= Pyramid; et++ {
		assert.NotEmpty(t, et.String())
		assert.Greater(t, et.NumNodes(), 0)
		back, ok := ElementTypeFromVTK(et.VTKCode())
		require.True(t, ok, "%s", et)
		assert.Equal(t, et, back)
	}
	_, ok := ElementTypeFromVTK(255)
	assert.False(t, ok)
	assert.Equal(t, Hex, ExodusTypeMap["HEX8"])
	assert.Equal(t, Tet10, ExodusTypeMap["TETRA10"])
	_, ok = ExodusTypeMap["MYSTERY9"]
	assert.False(t, ok)
}

func TestMeshString(t *testing.T) {
	m := NewMesh()
	m.Points = [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	m.CellBlocks = []CellBlock{{Type: Triangle, Conn: [][]int{{0, 1, 2}}}}
	m.PointSets["left"] = []int{0}
	s := m.String()
	assert.Contains(t, s, "3 points")
	assert.Contains(t, s, "Triangle")
	assert.Contains(t, s, "left")
}
