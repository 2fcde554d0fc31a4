package readfiles

import (
	"encoding/base64"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gomesh/mesh"
)

func TestReadVTU(t *testing.T) {
	var (
		data = []byte(`<?xml version="1.0"?>
<VTKFile type="UnstructuredGrid" version="0.1" byte_order="LittleEndian">
  <UnstructuredGrid>
    <Piece NumberOfPoints="5" NumberOfCells="2">
      <Points>
        <DataArray type="Float64" Name="Points" NumberOfComponents="3" format="ascii">
          0 0 0  1 0 0  1 1 0  0 1 0  0.5 0.5 1
        </DataArray>
      </Points>
      <Cells>
        <DataArray type="Int64" Name="connectivity" format="ascii">
          0 1 2 3
          0 1 4
        </DataArray>
        <DataArray type="Int64" Name="offsets" format="ascii">4 7</DataArray>
        <DataArray type="UInt8" Name="types" format="ascii">9 5</DataArray>
      </Cells>
      <PointData>
        <DataArray type="Float64" Name="TEMP" format="ascii">1 2 3 4 5</DataArray>
        <DataArray type="Float64" Name="nodeset_3" format="ascii">0 1 0 0 1</DataArray>
      </PointData>
      <CellData>
        <DataArray type="Int64" Name="block_id" format="ascii">1 2</DataArray>
        <DataArray type="Float64" Name="element-material" format="ascii">7 9</DataArray>
      </CellData>
    </Piece>
  </UnstructuredGrid>
</VTKFile>`)
		m = readVTUData(data, false)
	)
	require.NoError(t, m.Check())
	assert.Equal(t, 5, len(m.Points))
	assert.Equal(t, [3]float64{0.5, 0.5, 1}, m.Points[4])

	require.Equal(t, 2, len(m.CellBlocks))
	assert.Equal(t, mesh.Quad, m.CellBlocks[0].Type)
	assert.Equal(t, mesh.Triangle, m.CellBlocks[1].Type)
	assert.Equal(t, []int{0, 1, 4}, m.CellBlocks[1].Conn[0])

	// nodeset_3 is consumed into a point set
	assert.Equal(t, []int{1, 4}, m.PointSets["3"])
	_, ok := m.PointData["nodeset_3"]
	assert.False(t, ok)
	assert.InDeltaSlice(t, []float64{1, 2, 3, 4, 5}, m.PointData["TEMP"].Data, 1.e-12)

	// block_id is consumed into cell sets
	assert.Equal(t, []int{0}, m.CellSets["1"])
	assert.Equal(t, []int{1}, m.CellSets["2"])
	_, ok = m.CellData["block_id"]
	assert.False(t, ok)
	assert.InDeltaSlice(t, []float64{7, 9}, m.CellData["element-material"], 1.e-12)
}

func TestReadVTUBinaryArray(t *testing.T) {
	// inline base64: a 4-byte length header followed by the raw values
	payload := make([]byte, 4+2*8)
	binary.LittleEndian.PutUint32(payload, 16)
	binary.LittleEndian.PutUint64(payload[4:], math.Float64bits(1.5))
	binary.LittleEndian.PutUint64(payload[12:], math.Float64bits(-2.5))
	var (
		dec = arrayDecoder{byteOrder: "LittleEndian"}
		a   = vtkDataArray{
			Type:    "Float64",
			Name:    "vals",
			Format:  "binary",
			Content: base64.StdEncoding.EncodeToString(payload),
		}
	)
	assert.InDeltaSlice(t, []float64{1.5, -2.5}, dec.floats(a), 1.e-12)
}

func TestReadVTUAppendedUnsupported(t *testing.T) {
	var (
		dec = arrayDecoder{}
		a   = vtkDataArray{Type: "Float64", Name: "vals", Format: "appended"}
	)
	assert.Panics(t, func() { dec.floats(a) })
}

func TestReadVTUMalformed(t *testing.T) {
	assert.Panics(t, func() { readVTUData([]byte("not xml at all <"), false) })
	// offsets inconsistent with the declared element type
	assert.Panics(t, func() {
		readVTUData([]byte(`<VTKFile type="UnstructuredGrid"><UnstructuredGrid>
<Piece NumberOfPoints="3" NumberOfCells="1">
<Points><DataArray type="Float64" format="ascii">0 0 0 1 0 0 0 1 0</DataArray></Points>
<Cells>
<DataArray type="Int64" Name="connectivity" format="ascii">0 1</DataArray>
<DataArray type="Int64" Name="offsets" format="ascii">2</DataArray>
<DataArray type="UInt8" Name="types" format="ascii">5</DataArray>
</Cells>
</Piece></UnstructuredGrid></VTKFile>`), false)
	})
}
