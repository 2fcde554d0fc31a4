package readfiles

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gomesh/mesh"
)

func TestReadExodus(t *testing.T) {
	var (
		data = unitHexExodus(t)
		m    = readExodusData(data, false, false)
	)
	require.NoError(t, m.Check())
	assert.Equal(t, 8, len(m.Points))
	assert.Equal(t, [3]float64{1, 1, 1}, m.Points[6])

	require.Equal(t, 1, len(m.CellBlocks))
	assert.Equal(t, mesh.Hex, m.CellBlocks[0].Type)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, m.CellBlocks[0].Conn[0])

	// DISPX/Y/Z fold into one 3-component field, TEMP stays scalar
	disp, ok := m.PointData["DISP"]
	require.True(t, ok)
	assert.Equal(t, 3, disp.Components)
	assert.Equal(t, 24, len(disp.Data))
	// node 2: DISPX=0.2, DISPY=2.2, DISPZ=4.2 from the first time step
	assert.InDeltaSlice(t, []float64{0.2, 2.2, 4.2}, disp.Data[6:9], 1.e-12)
	temp, ok := m.PointData["TEMP"]
	require.True(t, ok)
	assert.Equal(t, 1, temp.Components)
	assert.InDelta(t, 100.5, temp.Data[5], 1.e-12)

	// only the first time step of the element variable survives
	assert.InDeltaSlice(t, []float64{42.0}, m.CellData["STRESS"], 1.e-12)

	// sets keyed by ordinal, node ids shifted to 0-based
	assert.Equal(t, []int{0, 1}, m.PointSets["1"])
	assert.Equal(t, []int{0}, m.CellSets["1"])
}

func TestReadExodusSetNames(t *testing.T) {
	var (
		data = unitHexExodus(t)
		m    = readExodusData(data, true, false)
	)
	assert.Equal(t, []int{0, 1}, m.PointSets["left"])
	assert.Equal(t, []int{0}, m.CellSets["body"])
	_, ok := m.PointSets["1"]
	assert.False(t, ok)
}

func TestReadExodusUnsupportedElementType(t *testing.T) {
	fx := newNCFixture(2)
	fx.addDim("time_step", 0)
	fx.addDim("num_nodes", 8)
	fx.addDim("num_el_in_blk1", 1)
	fx.addDim("num_nod_per_el1", 8)
	fx.addFixedVar("coordx", []int{1}, ncDouble, nil, ncDoubles(make([]float64, 8)))
	fx.addFixedVar("connect1", []int{2, 3}, ncInt,
		map[string]string{"elem_type": "MYSTERY9"},
		ncInts([]int{1, 2, 3, 4, 5, 6, 7, 8}))
	assert.Panics(t, func() { readExodusData(fx.bytes(), false, false) })
}

func TestReadExodusRejectsCDF5(t *testing.T) {
	assert.Panics(t, func() { readExodusData([]byte("CDF\x05garbage"), false, false) })
	assert.Panics(t, func() { readExodusData([]byte("nonsense"), false, false) })
}

// unitHexExodus builds an in-memory Exodus file holding one unit hex,
// displacement and temperature nodal variables with two time steps, one
// element variable, a two-node node set and named sets
func unitHexExodus(t *testing.T) []byte {
	t.Helper()
	var (
		fx     = newNCFixture(2) // two time steps, readers keep the first
		coords = [][3]float64{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
			{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
		}
	)
	fx.addDim("time_step", 0) // unlimited
	fx.addDim("num_nodes", 8)
	fx.addDim("num_dim", 3)
	fx.addDim("num_el_in_blk1", 1)
	fx.addDim("num_nod_per_el1", 8)
	fx.addDim("num_nod_ns1", 2)
	fx.addDim("num_nod_var", 4)
	fx.addDim("num_elem_var", 1)
	fx.addDim("len_string", 33)

	// coord laid out one axis at a time
	var flat []float64
	for d := 0; d < 3; d++ {
		for _, c := range coords {
			flat = append(flat, c[d])
		}
	}
	fx.addFixedVar("coord", []int{2, 1}, ncDouble, nil, ncDoubles(flat))
	fx.addFixedVar("connect1", []int{3, 4}, ncInt,
		map[string]string{"elem_type": "HEX8"},
		ncInts([]int{1, 2, 3, 4, 5, 6, 7, 8}))
	fx.addFixedVar("name_nod_var", []int{6, 8}, ncChar, nil,
		ncNames(33, "DISPX", "DISPY", "DISPZ", "TEMP"))
	fx.addFixedVar("name_elem_var", []int{7, 8}, ncChar, nil,
		ncNames(33, "STRESS"))
	fx.addFixedVar("ns_names", []int{7, 8}, ncChar, nil, ncNames(33, "left"))
	fx.addFixedVar("eb_names", []int{7, 8}, ncChar, nil, ncNames(33, "body"))
	fx.addFixedVar("node_ns1", []int{5}, ncInt, nil, ncInts([]int{1, 2}))

	// nodal variables: DISPX = 0.1*i, DISPY = 2 + 0.1*i, DISPZ = 4 + 0.1*i,
	// TEMP = 100 + 0.1*i at time step 0, everything shifted at step 1
	for v, base := range []float64{0, 2, 4, 100} {
		var rec0, rec1 []float64
		for i := 0; i < 8; i++ {
			rec0 = append(rec0, base+0.1*float64(i))
			rec1 = append(rec1, base+0.1*float64(i)+1000)
		}
		fx.addRecordVar(nodVarName(v), []int{0, 1}, ncDouble,
			ncDoubles(rec0), ncDoubles(rec1))
	}
	fx.addRecordVar("vals_elem_var1eb1", []int{0, 3}, ncDouble,
		ncDoubles([]float64{42.0}), ncDoubles([]float64{43.0}))
	return fx.bytes()
}

func nodVarName(index int) string {
	return []string{"vals_nod_var1", "vals_nod_var2", "vals_nod_var3", "vals_nod_var4"}[index]
}

// ncFixture serializes a CDF-1 file for tests, mirroring the header
// layout the decoder expects
type ncFixture struct {
	numRecs int
	dims    []ncDim
	vars    []ncFixtureVar
}

type ncFixtureVar struct {
	name    string
	dimIDs  []int
	nctype  int32
	atts    map[string]string
	payload [][]byte // one slice for fixed vars, one per record otherwise
	record  bool
}

func newNCFixture(numRecs int) *ncFixture {
	return &ncFixture{numRecs: numRecs}
}

func (f *ncFixture) addDim(name string, length int) {
	f.dims = append(f.dims, ncDim{Name: name, Length: length})
}

func (f *ncFixture) addFixedVar(name string, dimIDs []int, nctype int32,
	atts map[string]string, data []byte) {
	f.vars = append(f.vars, ncFixtureVar{
		name: name, dimIDs: dimIDs, nctype: nctype, atts: atts,
		payload: [][]byte{data},
	})
}

func (f *ncFixture) addRecordVar(name string, dimIDs []int, nctype int32,
	records ...[]byte) {
	f.vars = append(f.vars, ncFixtureVar{
		name: name, dimIDs: dimIDs, nctype: nctype,
		payload: records, record: true,
	})
}

// vsize is one record's (or the whole fixed variable's) data size,
// padded to a 4-byte boundary
func (f *ncFixture) vsize(v ncFixtureVar) int {
	n := ncTypeSize[v.nctype]
	for _, id := range v.dimIDs {
		if l := f.dims[id].Length; l > 0 {
			n *= l
		}
	}
	return (n + 3) &^ 3
}

func (f *ncFixture) bytes() []byte {
	// first pass sizes the header, second pass has the final offsets
	header := f.header(make([]int64, len(f.vars)))
	begins := make([]int64, len(f.vars))
	off := int64(len(header))
	for i, v := range f.vars {
		if !v.record {
			begins[i] = off
			off += int64(f.vsize(v))
		}
	}
	recStart := off
	slot := int64(0)
	for i, v := range f.vars {
		if v.record {
			begins[i] = recStart + slot
			slot += int64(f.vsize(v))
		}
	}
	recSize := slot

	var buf bytes.Buffer
	buf.Write(f.header(begins))
	for _, v := range f.vars {
		if !v.record {
			writePadded(&buf, v.payload[0], f.vsize(v))
		}
	}
	for rec := 0; rec < f.numRecs; rec++ {
		recBase := buf.Len()
		for _, v := range f.vars {
			if v.record {
				writePadded(&buf, v.payload[rec], f.vsize(v))
			}
		}
		for buf.Len() < recBase+int(recSize) {
			buf.WriteByte(0)
		}
	}
	return buf.Bytes()
}

func (f *ncFixture) header(begins []int64) []byte {
	var buf bytes.Buffer
	buf.WriteString("CDF\x01")
	writeInt32(&buf, int32(f.numRecs))
	writeInt32(&buf, tagDimension)
	writeInt32(&buf, int32(len(f.dims)))
	for _, d := range f.dims {
		writeName(&buf, d.Name)
		writeInt32(&buf, int32(d.Length))
	}
	writeInt32(&buf, 0) // no global attributes
	writeInt32(&buf, 0)
	writeInt32(&buf, tagVariable)
	writeInt32(&buf, int32(len(f.vars)))
	for i, v := range f.vars {
		writeName(&buf, v.name)
		writeInt32(&buf, int32(len(v.dimIDs)))
		for _, id := range v.dimIDs {
			writeInt32(&buf, int32(id))
		}
		if len(v.atts) == 0 {
			writeInt32(&buf, 0)
			writeInt32(&buf, 0)
		} else {
			writeInt32(&buf, tagAttribute)
			writeInt32(&buf, int32(len(v.atts)))
			for name, val := range v.atts {
				writeName(&buf, name)
				writeInt32(&buf, ncChar)
				writeInt32(&buf, int32(len(val)))
				writePadded(&buf, []byte(val), (len(val)+3)&^3)
			}
		}
		writeInt32(&buf, v.nctype)
		writeInt32(&buf, int32(f.vsize(v)))
		writeInt32(&buf, int32(begins[i]))
	}
	return buf.Bytes()
}

func writeInt32(buf *bytes.Buffer, v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	buf.Write(b[:])
}

func writeName(buf *bytes.Buffer, s string) {
	writeInt32(buf, int32(len(s)))
	writePadded(buf, []byte(s), (len(s)+3)&^3)
}

func writePadded(buf *bytes.Buffer, data []byte, size int) {
	buf.Write(data)
	for i := len(data); i < size; i++ {
		buf.WriteByte(0)
	}
}

func ncDoubles(vals []float64) []byte {
	var buf bytes.Buffer
	for _, x := range vals {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(x))
		buf.Write(b[:])
	}
	return buf.Bytes()
}

func ncInts(vals []int) []byte {
	var buf bytes.Buffer
	for _, x := range vals {
		writeInt32(&buf, int32(x))
	}
	return buf.Bytes()
}

// ncNames packs strings into a fixed-width NUL padded char matrix
func ncNames(width int, names ...string) []byte {
	var buf bytes.Buffer
	for _, s := range names {
		writePadded(&buf, []byte(s), width)
	}
	return buf.Bytes()
}
